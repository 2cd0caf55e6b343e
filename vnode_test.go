package golem

import (
	"testing"

	"github.com/germtb/gox"

	"github.com/germtb/golem/dom"
)

func TestExpandPassesThroughTagNodes(t *testing.T) {
	v := gox.VNode{Type: "div", Children: []gox.VNode{CreateTextNode("x")}}
	out := Expand(v)
	if typ, _ := TypeString(out); typ != "div" {
		t.Errorf("type = %v, want div", out.Type)
	}
	if len(out.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(out.Children))
	}
}

func TestExpandRunsComponents(t *testing.T) {
	var card gox.Component = func(props gox.Props) gox.VNode {
		title, _ := props["title"].(string)
		kids, _ := props["children"].([]gox.VNode)
		children := append([]gox.VNode{
			{Type: "h1", Children: []gox.VNode{CreateTextNode(title)}},
		}, kids...)
		return gox.VNode{Type: "section", Children: children}
	}

	v := gox.VNode{
		Type:     card,
		Props:    gox.Props{"title": "Hi"},
		Children: []gox.VNode{{Type: "p"}},
	}
	out := Expand(v)

	if typ, _ := TypeString(out); typ != "section" {
		t.Fatalf("type = %v, want section", out.Type)
	}
	if len(out.Children) != 2 {
		t.Fatalf("children = %d, want heading plus passed-through child", len(out.Children))
	}
	if typ, _ := TypeString(out.Children[0]); typ != "h1" {
		t.Errorf("first child = %v, want h1", out.Children[0].Type)
	}
	if typ, _ := TypeString(out.Children[1]); typ != "p" {
		t.Errorf("second child = %v, want p", out.Children[1].Type)
	}
}

func TestExpandRunsNestedComponents(t *testing.T) {
	var leaf gox.Component = func(props gox.Props) gox.VNode {
		return gox.VNode{Type: "em", Children: []gox.VNode{CreateTextNode("leaf")}}
	}
	var branch gox.Component = func(props gox.Props) gox.VNode {
		return gox.VNode{Type: "div", Children: []gox.VNode{{Type: leaf}}}
	}

	out := Expand(gox.VNode{Type: branch})
	if typ, _ := TypeString(out.Children[0]); typ != "em" {
		t.Errorf("nested component should expand, got %v", out.Children[0].Type)
	}
}

func TestNodesToDomBuildsTree(t *testing.T) {
	v := gox.VNode{
		Type:  "div",
		Props: gox.Props{"class": "row", "id": "main"},
		Children: []gox.VNode{
			CreateTextNode("hi"),
			{Type: "button", Props: gox.Props{"disabled": true}},
		},
	}
	nodes := nodesToDom(v)
	if len(nodes) != 1 {
		t.Fatalf("roots = %d, want 1", len(nodes))
	}
	got := dom.OuterHTML(nodes[0])
	want := `<div class="row" id="main">hi<button disabled></button></div>`
	if got != want {
		t.Errorf("tree = %q, want %q", got, want)
	}
}

func TestNodesToDomFlattensFragments(t *testing.T) {
	v := gox.VNode{
		Type: gox.FragmentNodeType,
		Children: []gox.VNode{
			{Type: "span", Children: []gox.VNode{CreateTextNode("a")}},
			{Type: gox.FragmentNodeType, Children: []gox.VNode{
				{Type: "span", Children: []gox.VNode{CreateTextNode("b")}},
			}},
		},
	}
	nodes := nodesToDom(v)
	if len(nodes) != 2 {
		t.Fatalf("roots = %d, want 2 (fragments flatten)", len(nodes))
	}
	if got := dom.OuterHTML(nodes[1]); got != "<span>b</span>" {
		t.Errorf("second root = %q", got)
	}
}

func TestPropToAttrMapping(t *testing.T) {
	tests := []struct {
		name   string
		prop   string
		value  any
		key    string
		val    string
		remove bool
	}{
		{"string passes through", "class", "row", "class", "row", false},
		{"camelCase becomes kebab", "dataRole", "nav", "data-role", "nav", false},
		{"true boolean is bare", "disabled", true, "disabled", "", false},
		{"false boolean removes", "disabled", false, "disabled", "", true},
		{"int formats as decimal", "tabIndex", 3, "tab-index", "3", false},
		{"float formats as decimal", "rows", 2.5, "rows", "2.5", false},
		{"structured value serializes", "items", []any{"a"}, "items", `["a"]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, val, remove := propToAttr(tt.prop, tt.value)
			if key != tt.key || val != tt.val || remove != tt.remove {
				t.Errorf("propToAttr(%q, %v) = (%q, %q, %v), want (%q, %q, %v)",
					tt.prop, tt.value, key, val, remove, tt.key, tt.val, tt.remove)
			}
		})
	}
}

func TestTextNodeHelpers(t *testing.T) {
	v := CreateTextNode("hello")
	if !IsTextNode(v) {
		t.Fatal("CreateTextNode should build a text node")
	}
	text, ok := GetTextContent(v)
	if !ok || text != "hello" {
		t.Errorf("GetTextContent = %q, %v", text, ok)
	}
	if IsTextNode(gox.VNode{Type: "div"}) {
		t.Error("tag nodes are not text nodes")
	}
	if _, ok := GetTextContent(gox.VNode{Type: "div"}); ok {
		t.Error("tag nodes have no text content")
	}
}
