package dom

import (
	"strings"
	"testing"

	"github.com/germtb/golem/css"
)

func TestOuterHTMLEscapesText(t *testing.T) {
	el := NewElement("p")
	el.Append(NewText(`2 < 3 & "sure"`))

	got := OuterHTML(el)
	want := `<p>2 &lt; 3 &amp; &#34;sure&#34;</p>`
	if got != want {
		t.Errorf("OuterHTML = %q, want %q", got, want)
	}
}

func TestOuterHTMLAttributes(t *testing.T) {
	tests := []struct {
		name string
		el   *Element
		want string
	}{
		{
			name: "plain attribute",
			el:   NewElement("a", Attr{Key: "href", Val: "/home"}),
			want: `<a href="/home"></a>`,
		},
		{
			name: "attribute value escaped",
			el:   NewElement("div", Attr{Key: "title", Val: `say "hi"`}),
			want: `<div title="say &#34;hi&#34;"></div>`,
		},
		{
			name: "boolean attribute bare",
			el:   NewElement("button", Attr{Key: "disabled", Val: ""}),
			want: `<button disabled></button>`,
		},
		{
			name: "boolean attribute with value keeps it",
			el:   NewElement("input", Attr{Key: "checked", Val: "checked"}),
			want: `<input checked="checked">`,
		},
		{
			name: "non-boolean empty attribute keeps quotes",
			el:   NewElement("div", Attr{Key: "data-x", Val: ""}),
			want: `<div data-x=""></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OuterHTML(tt.el); got != tt.want {
				t.Errorf("OuterHTML = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVoidTagsHaveNoEndTag(t *testing.T) {
	el := NewElement("div")
	el.Append(NewElement("br"))
	el.Append(NewText("after"))

	got := OuterHTML(el)
	want := `<div><br>after</div>`
	if got != want {
		t.Errorf("OuterHTML = %q, want %q", got, want)
	}
}

func TestInnerHTMLSkipsOwnTag(t *testing.T) {
	el := NewElement("section")
	el.Append(NewElement("em"))
	el.Append(NewText("x"))

	if got, want := InnerHTML(el), `<em></em>x`; got != want {
		t.Errorf("InnerHTML = %q, want %q", got, want)
	}
}

func TestOuterHTMLOmitsShadow(t *testing.T) {
	host := NewElement("x-card")
	sr := host.AttachShadow()
	sr.Append(NewElement("header"))
	host.Append(NewText("light"))

	got := OuterHTML(host)
	want := `<x-card>light</x-card>`
	if got != want {
		t.Errorf("OuterHTML = %q, want %q", got, want)
	}
}

func TestRenderHTMLEmitsDeclarativeShadow(t *testing.T) {
	host := NewElement("x-card")
	sr := host.AttachShadow()
	btn := NewElement("button")
	btn.Append(NewText("go"))
	sr.Append(btn)
	host.Append(NewText("light"))

	sheet, err := css.Parse("button { color: red; }")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sr.SetAdoptedSheets([]*css.Stylesheet{sheet})

	got := RenderHTML(host)
	want := `<x-card><template shadowrootmode="open">` +
		`<style>button { color: red; }</style>` +
		`<button>go</button>` +
		`</template>light</x-card>`
	if got != want {
		t.Errorf("RenderHTML = %q, want %q", got, want)
	}
}

func TestRenderHTMLNestedShadows(t *testing.T) {
	outer := NewElement("x-outer")
	osr := outer.AttachShadow()
	inner := NewElement("x-inner")
	isr := inner.AttachShadow()
	isr.Append(NewText("deep"))
	osr.Append(inner)

	got := RenderHTML(outer)
	want := `<x-outer><template shadowrootmode="open">` +
		`<x-inner><template shadowrootmode="open">deep</template></x-inner>` +
		`</template></x-outer>`
	if got != want {
		t.Errorf("RenderHTML = %q, want %q", got, want)
	}
}

func TestFrenderHTMLWritesToWriter(t *testing.T) {
	el := NewElement("span")
	el.Append(NewText("hello"))

	var sb strings.Builder
	FrenderHTML(&sb, el)
	if got, want := sb.String(), `<span>hello</span>`; got != want {
		t.Errorf("FrenderHTML wrote %q, want %q", got, want)
	}
}

func TestParseSerializeRoundTrip(t *testing.T) {
	const markup = `<div class="row"><span>a &amp; b</span><input type="text"></div>`

	el, err := ParseOne(markup)
	if err != nil {
		t.Fatalf("ParseOne: %v", err)
	}
	if got := OuterHTML(el); got != markup {
		t.Errorf("round trip = %q, want %q", got, markup)
	}
}
