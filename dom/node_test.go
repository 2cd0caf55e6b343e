package dom

import "testing"

func TestClassesAreASet(t *testing.T) {
	el := NewElement("div", Attr{Key: "class", Val: "big  card big"})
	got := el.Classes()
	if len(got) != 2 || got[0] != "big" || got[1] != "card" {
		t.Errorf("Classes = %v, want [big card]", got)
	}
	if !el.HasClass("card") {
		t.Error("expected HasClass(card) to be true")
	}
	if el.HasClass("small") {
		t.Error("expected HasClass(small) to be false")
	}
}

func TestClassesOfAnUnclassedElement(t *testing.T) {
	if got := NewElement("div").Classes(); len(got) != 0 {
		t.Errorf("Classes = %v, want none", got)
	}
}

func TestAttrOverwriteKeepsPosition(t *testing.T) {
	el := NewElement("input", Attr{Key: "type", Val: "text"}, Attr{Key: "name", Val: "q"})
	el.SetAttr("type", "search")
	attrs := el.Attrs()
	if attrs[0].Key != "type" || attrs[0].Val != "search" {
		t.Errorf("first attr = %s=%q, want type=%q", attrs[0].Key, attrs[0].Val, "search")
	}
	el.RemoveAttr("type")
	if el.HasAttr("type") {
		t.Error("type attribute should be gone after RemoveAttr")
	}
	if _, ok := el.Attr("name"); !ok {
		t.Error("name attribute should survive removing type")
	}
}

func TestTextContentStaysInTheLightTree(t *testing.T) {
	el := NewElement("x-card")
	el.Append(NewText("light"))
	shadow := el.AttachShadow()
	shadow.Append(NewText("shadow"))
	if got := el.TextContent(); got != "light" {
		t.Errorf("TextContent = %q, want %q", got, "light")
	}
}

func TestMovingAChildDetachesItFirst(t *testing.T) {
	a := NewElement("ul")
	b := NewElement("ul")
	li := NewElement("li")
	a.Append(li)
	b.Append(li)
	if len(a.Children()) != 0 {
		t.Errorf("old parent still has %d children", len(a.Children()))
	}
	if li.Parent() != b {
		t.Error("child should report the new parent")
	}
}
