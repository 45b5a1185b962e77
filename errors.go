package questicle

import (
	"fmt"
	"strings"
)

// WrapErrorWithSource decorates a parse error with a few lines of
// context and a caret pointing at the offending column. Errors without
// a source position (runtime errors, type diagnostics) pass through
// unchanged.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, src, "")
}

// WrapErrorWithName is WrapErrorWithSource with a file name prefixed to
// the header line.
func WrapErrorWithName(err error, src, name string) error {
	pe, ok := err.(*ParseError)
	if !ok {
		return err
	}
	line, col := pe.Line, pe.Col
	if pe.Kind == ParseEOF {
		line = strings.Count(src, "\n") + 1
		col = 1
	}
	return fmt.Errorf("%s", prettySnippet(pe.Error(), src, name, line, col))
}

// prettySnippet renders one line of context before and after the error
// line, with a gutter and a caret under the error column.
func prettySnippet(msg, src, name string, line, col int) string {
	lines := strings.Split(src, "\n")
	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s: ", name)
	}
	fmt.Fprintf(&b, "parse error: %s\n", msg)
	lo := line - 1
	hi := line + 1
	for n := lo; n <= hi; n++ {
		if n < 1 || n > len(lines) {
			continue
		}
		fmt.Fprintf(&b, "%4d | %s\n", n, lines[n-1])
		if n == line {
			pad := col - 1
			if pad < 0 {
				pad = 0
			}
			fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", pad))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
