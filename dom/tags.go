package dom

// TextTag marks text nodes; the Text field carries the content.
const TextTag = "#text"

// ShadowTag marks shadow roots attached via AttachShadow.
const ShadowTag = "#shadow-root"

// RootTag marks the document root element.
const RootTag = "#document"

// Common event type names.
const (
	ClickEvent   = "click"
	InputEvent   = "input"
	ChangeEvent  = "change"
	SubmitEvent  = "submit"
	KeyDownEvent = "keydown"
	KeyUpEvent   = "keyup"
	FocusEvent   = "focus"
	BlurEvent    = "blur"
)

// voidTags are elements that never have children; the parser treats a
// bare start tag as self-closing and the serializer omits the end tag.
var voidTags = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// booleanAttrs are attributes whose presence alone carries the value;
// the serializer writes them without ="...".
var booleanAttrs = map[string]bool{
	"disabled":       true,
	"checked":        true,
	"readonly":       true,
	"required":       true,
	"autofocus":      true,
	"autoplay":       true,
	"controls":       true,
	"loop":           true,
	"muted":          true,
	"selected":       true,
	"hidden":         true,
	"multiple":       true,
	"novalidate":     true,
	"open":           true,
	"reversed":       true,
	"default":        true,
	"ismap":          true,
	"formnovalidate": true,
}

// IsVoidTag reports whether tag is a void element (no children, no end
// tag).
func IsVoidTag(tag string) bool {
	return voidTags[tag]
}

// IsBooleanAttr reports whether name is a standard boolean attribute.
func IsBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
