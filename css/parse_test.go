package css

import (
	"fmt"
	"strings"
	"testing"
)

func compareDecls(got []Declaration, expected map[string]string) error {
	if len(got) != len(expected) {
		return fmt.Errorf("declaration count mismatch: %d != %d", len(got), len(expected))
	}
	for _, d := range got {
		if expected[d.Property] != d.Value {
			return fmt.Errorf("value mismatch for %s: %q != %q", d.Property, d.Value, expected[d.Property])
		}
	}
	return nil
}

func TestParseDeclarations(t *testing.T) {
	style := `background: url("example;with;semicolons.jpg"); color: red; margin-right: calc(10px + 5px); content: "hello;world";`
	decls, err := ParseDeclarations(style)
	if err != nil {
		t.Fatalf("ParseDeclarations failed: %v", err)
	}
	expected := map[string]string{
		"background":   `url("example;with;semicolons.jpg")`,
		"color":        "red",
		"margin-right": `calc(10px + 5px)`,
		"content":      `"hello;world"`,
	}
	if err := compareDecls(decls, expected); err != nil {
		t.Fatal(err)
	}
}

func TestParseDeclarationsErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"missing colon", `color red;`},
		{"unmatched quote", `color: "unclosed;`},
		{"unmatched open paren", `margin: calc(1 + 2;`},
		{"unmatched close paren", `margin: 1px);`},
	}
	for _, tt := range cases {
		if _, err := ParseDeclarations(tt.text); err == nil {
			t.Errorf("%s: expected error for %q", tt.name, tt.text)
		}
	}
}

func TestParseRules(t *testing.T) {
	sheet, err := Parse(`
		/* host styling */
		button { color: red; padding: 4px 8px }
		button.primary:hover { color: blue; }
	`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(sheet.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(sheet.Rules))
	}
	if sheet.Rules[0].Selector != "button" {
		t.Errorf("selector = %q, want button", sheet.Rules[0].Selector)
	}
	if err := compareDecls(sheet.Rules[0].Declarations, map[string]string{
		"color":   "red",
		"padding": "4px 8px",
	}); err != nil {
		t.Error(err)
	}
	if sheet.Rules[1].Selector != "button.primary:hover" {
		t.Errorf("selector = %q", sheet.Rules[1].Selector)
	}
}

func TestParseAtRules(t *testing.T) {
	sheet, err := Parse(`
		@import url("shared.css");
		@media (max-width: 600px) {
			button { display: none; }
		}
		p { margin: 0; }
	`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(sheet.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(sheet.Rules))
	}
	if !sheet.Rules[0].AtRule || !strings.HasPrefix(sheet.Rules[0].Selector, "@import") {
		t.Errorf("rule 0 = %+v, want raw @import", sheet.Rules[0])
	}
	if !sheet.Rules[1].AtRule || !strings.Contains(sheet.Rules[1].Raw, "display: none") {
		t.Errorf("rule 1 raw = %q, want full media block", sheet.Rules[1].Raw)
	}
	if sheet.Rules[2].Selector != "p" {
		t.Errorf("rule 2 selector = %q, want p", sheet.Rules[2].Selector)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"unterminated block", `button { color: red`},
		{"missing open brace", `button color: red }`},
		{"empty selector", `{ color: red }`},
		{"unterminated at-rule", `@media (max-width) {`},
	}
	for _, tt := range cases {
		if _, err := Parse(tt.text); err == nil {
			t.Errorf("%s: expected error for %q", tt.name, tt.text)
		}
	}
}

func TestParseEmptyAndCommentOnly(t *testing.T) {
	for _, text := range []string{"", "   \n\t ", "/* just a comment */"} {
		sheet, err := Parse(text)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", text, err)
			continue
		}
		if len(sheet.Rules) != 0 {
			t.Errorf("Parse(%q) = %d rules, want 0", text, len(sheet.Rules))
		}
	}
}

func TestLookup(t *testing.T) {
	sheet, err := Parse(`
		button { color: red; }
		button { color: blue; padding: 2px; }
	`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// Source order wins.
	if v, ok := sheet.Lookup("button", "color"); !ok || v != "blue" {
		t.Errorf("Lookup(button, color) = %q,%v, want blue,true", v, ok)
	}
	if _, ok := sheet.Lookup("button", "margin"); ok {
		t.Error("Lookup should miss for undeclared property")
	}
	if _, ok := sheet.Lookup("div", "color"); ok {
		t.Error("Lookup should miss for unknown selector")
	}
}
