package golem

import (
	"github.com/germtb/gox"

	"github.com/germtb/golem/attrs"
	"github.com/germtb/golem/dom"
	"github.com/germtb/golem/util"
)

// VNode is an alias for gox.VNode - no wrapper needed.
type VNode = gox.VNode

// Props is an alias for gox.Props.
type Props = gox.Props

// IsTextNode returns true if this is a text node.
func IsTextNode(v gox.VNode) bool {
	s, ok := v.Type.(string)
	return ok && s == gox.TextNodeType
}

// GetTextContent returns the text content if this is a text node.
func GetTextContent(v gox.VNode) (string, bool) {
	if !IsTextNode(v) {
		return "", false
	}
	if content, ok := v.Props["content"].(string); ok {
		return content, true
	}
	if text, ok := v.Props["text"].(string); ok {
		return text, true
	}
	return "", false
}

// TypeString returns the type as a string (for tag-named elements).
func TypeString(v gox.VNode) (string, bool) {
	s, ok := v.Type.(string)
	return s, ok
}

// CreateTextNode creates a text node.
func CreateTextNode(text string) gox.VNode {
	return gox.VNode{
		Type:     gox.TextNodeType,
		Props:    gox.Props{"text": text, "content": text},
		Children: nil,
	}
}

// Expand recursively expands functional components into their rendered output.
func Expand(v gox.VNode) gox.VNode {
	// If it's a text node or tag-named element, just expand children
	if _, ok := TypeString(v); ok {
		if len(v.Children) == 0 {
			return v
		}

		expandedChildren := make([]gox.VNode, len(v.Children))
		for i, child := range v.Children {
			expandedChildren[i] = Expand(child)
		}

		return gox.VNode{
			Type:     v.Type,
			Props:    v.Props,
			Children: expandedChildren,
		}
	}

	// It's a functional component
	if comp, ok := v.Type.(gox.Component); ok {
		// Create props with children
		props := gox.Props{}
		for k, val := range v.Props {
			props[k] = val
		}
		props["children"] = v.Children

		result := comp(props)
		return Expand(result)
	}

	return v
}

// nodesToDom converts an element tree from the node template form into
// detached DOM nodes ready for insertion: components expand, fragments
// flatten into their children, text nodes become text elements, props
// become attributes through the codec.
func nodesToDom(v gox.VNode) []*dom.Element {
	return convertNode(Expand(v))
}

func convertNode(v gox.VNode) []*dom.Element {
	if IsTextNode(v) {
		text, _ := GetTextContent(v)
		return []*dom.Element{dom.NewText(text)}
	}
	typeStr, ok := TypeString(v)
	if !ok {
		// Unexpandable type (a component func literal that is not a
		// gox.Component, or a non-string tag). Nothing to build.
		return nil
	}
	if typeStr == "fragment" || typeStr == gox.FragmentNodeType {
		var out []*dom.Element
		for _, child := range v.Children {
			out = append(out, convertNode(child)...)
		}
		return out
	}

	var attrList []dom.Attr
	for _, name := range util.OrderedKeys(v.Props) {
		if name == "children" || v.Props[name] == nil {
			continue
		}
		key, val, remove := propToAttr(name, v.Props[name])
		if !remove {
			attrList = append(attrList, dom.Attr{Key: key, Val: val})
		}
	}
	el := dom.NewElement(typeStr, attrList...)
	for _, child := range v.Children {
		for _, kid := range convertNode(child) {
			el.Append(kid)
		}
	}
	return []*dom.Element{el}
}

// propToAttr maps one node prop to attribute form: the name through the
// camelCase/kebab-case transform, the value through the codec with its
// kind inferred from the Go type. False booleans and nil values remove.
func propToAttr(name string, v any) (key, val string, remove bool) {
	key = attrs.ToAttr(name)
	switch tv := v.(type) {
	case bool:
		val, remove = attrs.Encode(tv, attrs.Bool)
	case string:
		val = tv
	default:
		if _, numeric := attrs.AsNumber(v); numeric {
			val, remove = attrs.Encode(v, attrs.Number)
		} else {
			val, remove = attrs.Encode(v, attrs.JSON)
		}
	}
	return key, val, remove
}
