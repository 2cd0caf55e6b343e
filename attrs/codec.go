// Package attrs converts between DOM attributes and typed component
// properties: camelCase property names map to kebab-case attribute names,
// and string attribute values decode to typed values according to a
// declared kind.
//
// Decoding never fails. Each kind has a degraded result for bad input
// (false, NaN, the empty string, an empty collection) so a malformed
// attribute can never take a component down.
package attrs

import (
	"encoding/json"
	"log"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Kind identifies how an attribute string maps to a property value.
type Kind string

const (
	Bool   Kind = "bool"
	Number Kind = "number"
	String Kind = "string"
	// JSON is the structured kind: sequences and mappings carried as
	// serialized text.
	JSON Kind = "json"
)

// ValidKind reports whether k is one of the declared kinds.
func ValidKind(k Kind) bool {
	switch k {
	case Bool, Number, String, JSON:
		return true
	}
	return false
}

// ToAttr converts a camelCase property name to its kebab-case attribute
// name: "maxItems" becomes "max-items". The mapping is mechanical; every
// upper-case rune becomes a separator plus its lower-case form.
func ToAttr(property string) string {
	var b strings.Builder
	b.Grow(len(property) + 2)
	for _, r := range property {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToProp converts a kebab-case attribute name to its camelCase property
// name: "max-items" becomes "maxItems". Inverse of ToAttr for names that
// round-trip.
func ToProp(attribute string) string {
	parts := strings.Split(attribute, "-")
	var b strings.Builder
	b.Grow(len(attribute))
	for i, part := range parts {
		if i == 0 || part == "" {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// Decode converts an attribute value to a typed property value. The
// present flag distinguishes an absent attribute from an empty one, which
// matters for Bool (presence is truth) and String (absent means empty).
//
//   - Bool: present is true, absent is false. The value text is ignored.
//   - Number: parsed as a float. Unparsable or absent input yields NaN;
//     NaN is the caller-visible error condition and is never masked.
//   - String: the raw value; absent decodes to "".
//   - JSON: parsed from serialized text. On failure the result degrades
//     to an empty collection: an empty slice when the text looks like a
//     sequence, an empty map otherwise.
func Decode(raw string, present bool, kind Kind) any {
	switch kind {
	case Bool:
		return present
	case Number:
		if !present {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case String:
		if !present {
			return ""
		}
		return raw
	case JSON:
		var v any
		if present {
			if err := json.Unmarshal([]byte(raw), &v); err == nil {
				return v
			}
		}
		if strings.HasPrefix(strings.TrimSpace(raw), "[") {
			return []any{}
		}
		return map[string]any{}
	}
	return nil
}

// Encode converts a typed property value back to attribute form. It is
// the reflection half of the codec: remove reports that the attribute
// should be removed rather than written (false booleans, nil values, and
// unserializable structured values all remove).
//
// A true boolean encodes to the empty string, matching the platform
// convention that a boolean attribute's presence alone carries the value.
func Encode(v any, kind Kind) (value string, remove bool) {
	if v == nil {
		return "", true
	}
	switch kind {
	case Bool:
		if b, ok := v.(bool); ok {
			if b {
				return "", false
			}
			return "", true
		}
		return "", true
	case Number:
		f, ok := AsNumber(v)
		if !ok {
			return "", true
		}
		return formatNumber(f), false
	case String:
		if s, ok := v.(string); ok {
			return s, false
		}
		return "", true
	case JSON:
		b, err := json.Marshal(v)
		if err != nil {
			log.Printf("attrs: cannot encode structured value: %v", err)
			return "", true
		}
		return string(b), false
	}
	return "", true
}

// AsNumber coerces any of Go's common numeric types to a float64. It is
// the loose-typing half of the Number kind: values arriving from
// deserializers or caller code may be any integer width.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// formatNumber prefers plain decimal text for values that have one and
// falls back to exponent form for magnitudes where decimal expansion
// stops being readable.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
