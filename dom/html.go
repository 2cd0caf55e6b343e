package dom

import (
	"html"
	"io"
	"strings"
)

// OuterHTML serializes el including its own tag. Shadow roots are not
// emitted; use RenderHTML for output that carries them declaratively.
func OuterHTML(el *Element) string {
	var sb strings.Builder
	writeHTML(&sb, el, false)
	return sb.String()
}

// InnerHTML serializes el's children only.
func InnerHTML(el *Element) string {
	var sb strings.Builder
	for _, c := range el.children {
		writeHTML(&sb, c, false)
	}
	return sb.String()
}

// RenderHTML serializes el for server output: every shadow root in the
// subtree is emitted as a declarative shadow template
// (<template shadowrootmode="open">) with its adopted stylesheets
// inlined as <style> tags, so a browser can hydrate the result.
func RenderHTML(el *Element) string {
	var sb strings.Builder
	writeHTML(&sb, el, true)
	return sb.String()
}

// FrenderHTML writes RenderHTML output to w.
func FrenderHTML(w io.Writer, el *Element) {
	io.WriteString(w, RenderHTML(el))
}

func writeHTML(sb *strings.Builder, el *Element, declarative bool) {
	switch el.Tag {
	case TextTag:
		sb.WriteString(html.EscapeString(el.Text))
		return
	case RootTag, ShadowTag:
		// Container pseudo-elements serialize as their contents.
		for _, c := range el.children {
			writeHTML(sb, c, declarative)
		}
		return
	}

	sb.WriteByte('<')
	sb.WriteString(el.Tag)
	for _, a := range el.attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		if a.Val == "" && IsBooleanAttr(a.Key) {
			continue
		}
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Val))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if IsVoidTag(el.Tag) {
		return
	}

	if declarative && el.shadow != nil {
		sb.WriteString(`<template shadowrootmode="open">`)
		// Sheet text is raw CSS: style content is not entity-escaped.
		for _, sheet := range el.shadow.sheets {
			sb.WriteString("<style>")
			sb.WriteString(sheet.Source)
			sb.WriteString("</style>")
		}
		for _, c := range el.shadow.children {
			writeHTML(sb, c, declarative)
		}
		sb.WriteString("</template>")
	}

	for _, c := range el.children {
		writeHTML(sb, c, declarative)
	}
	sb.WriteString("</")
	sb.WriteString(el.Tag)
	sb.WriteByte('>')
}
