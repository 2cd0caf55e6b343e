package dom

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/germtb/golem/util"
)

// PrintTree prints an indented dump of el's subtree to stdout for
// debugging.
func PrintTree(el *Element) {
	FprintTree(os.Stdout, el)
}

// SprintTree returns the indented dump as a string.
func SprintTree(el *Element) string {
	var sb strings.Builder
	FprintTree(&sb, el)
	return sb.String()
}

// FprintTree writes the indented dump to the given writer.
func FprintTree(w io.Writer, el *Element) {
	fprintTreeIndent(w, el, 0)
}

func fprintTreeIndent(w io.Writer, el *Element, depth int) {
	indent := strings.Repeat("  ", depth)

	switch {
	case el.IsText():
		fmt.Fprintf(w, "%s%q\n", indent, util.Truncate(el.Text, 60))
		return
	case el.Tag == ShadowTag:
		line := indent + ShadowTag
		if n := len(el.sheets); n > 0 {
			line += fmt.Sprintf(" (%d sheets)", n)
		}
		fmt.Fprintln(w, line)
	default:
		line := indent + el.Tag
		for _, a := range el.attrs {
			if a.Val == "" {
				line += " " + a.Key
			} else {
				line += fmt.Sprintf(" %s=%q", a.Key, util.Truncate(a.Val, 40))
			}
		}
		fmt.Fprintln(w, line)
	}

	if el.shadow != nil {
		fprintTreeIndent(w, el.shadow, depth+1)
	}
	for _, c := range el.children {
		fprintTreeIndent(w, c, depth+1)
	}
}
