package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/wavetermdev/htmltoken"
)

// Parse converts markup text into detached element trees. The parser is
// tolerant the way the platform is: void elements self-close even when
// written as start tags, stray end tags close the nearest matching open
// tag or are dropped, comments and doctypes are dropped, text (entities
// decoded) is preserved as written.
func Parse(markup string) ([]*Element, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, nil
	}
	iter := htmltoken.NewTokenizer(strings.NewReader(markup))
	var roots []*Element
	var stack []*Element

	appendNode := func(el *Element) {
		if len(stack) == 0 {
			roots = append(roots, el)
			return
		}
		parent := stack[len(stack)-1]
		el.parent = parent
		parent.children = append(parent.children, el)
	}

	for {
		tokenType := iter.Next()
		token := iter.Token()
		switch tokenType {
		case htmltoken.StartTagToken:
			el := tokenToElement(token)
			appendNode(el)
			if !IsVoidTag(token.Data) {
				stack = append(stack, el)
			}
		case htmltoken.SelfClosingTagToken:
			appendNode(tokenToElement(token))
		case htmltoken.EndTagToken:
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].Tag == token.Data {
					stack = stack[:i]
					break
				}
			}
		case htmltoken.TextToken:
			if token.Data != "" {
				appendNode(NewText(token.Data))
			}
		case htmltoken.CommentToken, htmltoken.DoctypeToken:
			// dropped
		case htmltoken.ErrorToken:
			if iter.Err() == io.EOF {
				return roots, nil
			}
			return nil, fmt.Errorf("error parsing markup: %w", iter.Err())
		}
	}
}

// ParseOne parses markup and returns its first element root, skipping
// leading whitespace text.
func ParseOne(markup string) (*Element, error) {
	roots, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	for _, r := range roots {
		if !r.IsText() || strings.TrimSpace(r.Text) != "" {
			return r, nil
		}
	}
	return nil, fmt.Errorf("no element in markup")
}

func tokenToElement(token htmltoken.Token) *Element {
	el := &Element{Tag: token.Data}
	for _, a := range token.Attr {
		el.attrs = append(el.attrs, Attr{Key: a.Key, Val: a.Val})
	}
	return el
}
