package questicle

import "strings"

// The formatter is token-based and independent of the parser: it has
// its own tokenizer that keeps comments and newlines, so it can
// normalize spacing without ever dropping a comment or reflowing the
// author's line structure. Output line breaks come only from input
// newlines plus the forced breaks around multi-line braces, which makes
// the whole pass idempotent.

// FormatterOptions controls the token formatter. IndentWidth is the
// number of spaces per nesting level; MaxBlankLines bounds runs of
// consecutive blank lines.
type FormatterOptions struct {
	IndentWidth   int `yaml:"indent"`
	MaxBlankLines int `yaml:"max_blank_lines"`
}

// DefaultFormatterOptions returns the options used when no config file
// is present.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{IndentWidth: 2, MaxBlankLines: 2}
}

// FormatSource formats src with the default options.
func FormatSource(src string) string {
	return FormatSourceWithOptions(src, DefaultFormatterOptions())
}

// FormatSourceWithOptions formats src. The result always ends with a
// single trailing newline unless it is empty.
func FormatSourceWithOptions(src string, opts FormatterOptions) string {
	if opts.IndentWidth < 1 {
		opts.IndentWidth = 2
	}
	if opts.MaxBlankLines < 0 {
		opts.MaxBlankLines = 0
	}
	w := &fmtWriter{toks: fmtTokenize(src), opts: opts}
	return w.render()
}

// ----- formatter tokens -----

type fmtTokenKind int

const (
	fNewline fmtTokenKind = iota
	fLineComment
	fBlockComment
	fIdent
	fKeyword
	fNumber
	fString
	fOp
	fLParen
	fRParen
	fLBrace
	fRBrace
	fLBracket
	fRBracket
	fComma
	fDot
	fSemi
	fColon
)

type fmtToken struct {
	kind fmtTokenKind
	text string
}

// fmtTokenize splits src into formatter tokens, preserving comments and
// newlines verbatim. Unknown bytes are dropped, mirroring the lexer.
func fmtTokenize(src string) []fmtToken {
	var toks []fmtToken
	i := 0
	push := func(kind fmtTokenKind, text string) {
		toks = append(toks, fmtToken{kind: kind, text: text})
	}
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == '\n':
			push(fNewline, "\n")
			i++
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f':
			i++
		case ch == '/' && i+1 < len(src) && src[i+1] == '/':
			start := i
			for i < len(src) && src[i] != '\n' {
				i++
			}
			push(fLineComment, src[start:i])
		case ch == '/' && i+1 < len(src) && src[i+1] == '*':
			start := i
			i += 2
			for i < len(src) {
				if src[i] == '*' && i+1 < len(src) && src[i+1] == '/' {
					i += 2
					break
				}
				i++
			}
			push(fBlockComment, src[start:i])
		case ch == '"':
			start := i
			i++
			for i < len(src) && src[i] != '\n' {
				if src[i] == '\\' && i+1 < len(src) {
					i += 2
					continue
				}
				if src[i] == '"' {
					i++
					break
				}
				i++
			}
			push(fString, src[start:i])
		case isDigit(ch):
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			push(fNumber, src[start:i])
		case isIdentStart(ch):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			text := src[start:i]
			if _, ok := keywords[text]; ok {
				push(fKeyword, text)
			} else {
				push(fIdent, text)
			}
		default:
			if i+1 < len(src) {
				two := src[i : i+2]
				switch two {
				case "->", "==", "!=", "<=", ">=", "&&", "||":
					push(fOp, two)
					i += 2
					continue
				}
			}
			switch ch {
			case '(':
				push(fLParen, "(")
			case ')':
				push(fRParen, ")")
			case '{':
				push(fLBrace, "{")
			case '}':
				push(fRBrace, "}")
			case '[':
				push(fLBracket, "[")
			case ']':
				push(fRBracket, "]")
			case ',':
				push(fComma, ",")
			case '.':
				push(fDot, ".")
			case ';':
				push(fSemi, ";")
			case ':':
				push(fColon, ":")
			case '+', '-', '*', '/', '%', '!', '=', '<', '>', '?':
				push(fOp, string(ch))
			}
			i++
		}
	}
	return toks
}

// ----- rendering -----

type fmtWriter struct {
	toks []fmtToken
	opts FormatterOptions
	out  strings.Builder

	indent       int
	needIndent   bool
	blanks       int // newlines at the current end of out
	suppressNL   bool
	started      bool
	noSpaceAfter bool
	genericDepth int
	blockStack   []bool

	prevKind fmtTokenKind
	prevText string
}

func (f *fmtWriter) render() string {
	f.needIndent = true
	for i := 0; i < len(f.toks); i++ {
		tok := f.toks[i]
		switch tok.kind {
		case fNewline:
			if f.suppressNL {
				f.suppressNL = false
			} else {
				f.newline()
			}
		case fLineComment:
			f.emit(tok.kind, tok.text, false, false)
			if i+1 >= len(f.toks) || f.toks[i+1].kind != fNewline {
				f.newline()
			}
		case fLBrace:
			isBlock := f.braceIsBlock(i)
			f.emit(fLBrace, "{", false, false)
			f.blockStack = append(f.blockStack, isBlock)
			if isBlock {
				f.newline()
				f.suppressNL = true
				f.indent++
			}
		case fRBrace:
			isBlock := true
			if n := len(f.blockStack); n > 0 {
				isBlock = f.blockStack[n-1]
				f.blockStack = f.blockStack[:n-1]
			}
			if isBlock {
				if f.blanks == 0 {
					f.newline()
				}
				f.suppressNL = false
				if f.indent > 0 {
					f.indent--
				}
			}
			f.emit(fRBrace, "}", false, false)
		case fOp:
			f.emitOp(tok.text)
		default:
			f.emit(tok.kind, tok.text, false, tok.kind == fDot)
		}
	}
	return trimFormatted(f.out.String())
}

func (f *fmtWriter) emitOp(text string) {
	// "list<" and "map<" open a type argument, written without spaces
	if text == "<" && f.prevKind == fIdent && (f.prevText == "list" || f.prevText == "map") {
		f.genericDepth++
		f.emit(fOp, text, true, true)
		return
	}
	if f.genericDepth > 0 && (text == "<" || text == ">") {
		if text == "<" {
			f.genericDepth++
		} else {
			f.genericDepth--
		}
		f.emit(fOp, text, true, text == "<")
		return
	}
	unary := (text == "-" || text == "!") && f.unaryPosition()
	f.emit(fOp, text, false, unary)
}

// unaryPosition reports whether an operator here has no left operand.
func (f *fmtWriter) unaryPosition() bool {
	if !f.started || f.needIndent {
		return true
	}
	switch f.prevKind {
	case fOp, fLParen, fLBracket, fLBrace, fComma, fColon, fSemi, fKeyword:
		return true
	}
	return false
}

func (f *fmtWriter) newline() {
	if !f.started {
		return
	}
	if f.blanks > f.opts.MaxBlankLines {
		return
	}
	f.out.WriteByte('\n')
	f.blanks++
	f.needIndent = true
}

func (f *fmtWriter) emit(kind fmtTokenKind, text string, noSpaceBefore, noSpaceAfter bool) {
	atLineStart := f.needIndent
	if f.needIndent {
		f.out.WriteString(strings.Repeat(" ", f.indent*f.opts.IndentWidth))
		f.needIndent = false
	}
	if !atLineStart && !noSpaceBefore && f.spaceBefore(kind) {
		f.out.WriteByte(' ')
	}
	f.out.WriteString(text)
	f.prevKind = kind
	f.prevText = text
	f.noSpaceAfter = noSpaceAfter
	f.started = true
	f.blanks = 0
	f.suppressNL = false
}

func (f *fmtWriter) spaceBefore(kind fmtTokenKind) bool {
	if !f.started || f.noSpaceAfter {
		return false
	}
	switch kind {
	case fRParen, fRBracket, fComma, fSemi, fColon, fDot:
		return false
	}
	switch f.prevKind {
	case fDot, fLParen, fLBracket:
		return false
	case fComma, fColon, fSemi:
		return true
	}
	if kind == fLParen {
		return f.prevKind == fKeyword
	}
	if kind == fLBracket {
		// indexing binds tight; everything else gets a space
		switch f.prevKind {
		case fIdent, fString, fRParen, fRBracket:
			return false
		}
		return true
	}
	if kind == fRBrace {
		return f.prevKind != fLBrace
	}
	switch f.prevKind {
	case fIdent, fKeyword, fNumber, fString, fOp,
		fRParen, fRBracket, fRBrace, fLBrace, fLineComment, fBlockComment:
		return true
	}
	return false
}

// braceIsBlock decides how the "{" at index i renders. A map stays
// inline only when nothing up to its matching "}" forces a line: any
// newline or comment inside switches to block layout.
func (f *fmtWriter) braceIsBlock(i int) bool {
	depth := 0
	for j := i + 1; j < len(f.toks); j++ {
		switch f.toks[j].kind {
		case fLBrace:
			depth++
		case fRBrace:
			if depth == 0 {
				return false
			}
			depth--
		case fNewline, fLineComment, fBlockComment:
			return true
		}
	}
	return true
}

func trimFormatted(s string) string {
	s = strings.TrimRight(s, " \n")
	if s == "" {
		return ""
	}
	return s + "\n"
}
