// Package css models component stylesheets: compiling CSS text into
// stylesheet objects and caching shared stylesheets fetched by URL.
//
// The cache is a process-wide singleton with get-or-fetch semantics:
// concurrent requests for one URL share a single in-flight fetch, a
// successful compile is memoized forever, and a failure leaves the entry
// clear so a later request can retry.
package css

// Declaration is one property/value pair inside a rule.
type Declaration struct {
	Property string
	Value    string
}

// Rule is one selector block of a stylesheet. At-rules (@media, @import,
// and friends) are preserved raw rather than interpreted; for those,
// AtRule is true, Selector holds the prelude and Raw the full text.
type Rule struct {
	Selector     string
	Declarations []Declaration
	AtRule       bool
	Raw          string
}

// Stylesheet is a compiled stylesheet: the original text plus its parsed
// rules. Stylesheets are immutable once built and safe to share across
// components.
type Stylesheet struct {
	Source string
	Rules  []Rule
}

// Lookup returns the last declared value for property under the given
// selector, honoring source order within the sheet.
func (s *Stylesheet) Lookup(selector, property string) (string, bool) {
	value := ""
	found := false
	for _, r := range s.Rules {
		if r.AtRule || r.Selector != selector {
			continue
		}
		for _, d := range r.Declarations {
			if d.Property == property {
				value = d.Value
				found = true
			}
		}
	}
	return value, found
}
