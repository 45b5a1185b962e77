package questicle

import (
	"strconv"
	"strings"
)

// Lexer scans a Questicle source string into tokens.
//
// Lexing never fails: whitespace and comments are skipped, and any byte
// that cannot start a token is silently dropped. Malformed constructs
// (an unterminated string, a stray "&") therefore surface later as
// parse errors on the surrounding tokens, not as lexer errors.
type Lexer struct {
	src    string
	cur    int
	line   int // 1-based
	col    int // 1-based
	tokens []Token

	// position of the token currently being scanned
	tokLine int
	tokCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekN(n int) byte {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0
	}
	return l.src[idx]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

// match consumes the next byte if it equals want.
func (l *Lexer) match(want byte) bool {
	if l.isAtEnd() || l.src[l.cur] != want {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) add(t TokenType) {
	l.tokens = append(l.tokens, Token{Type: t, Line: l.tokLine, Col: l.tokCol})
}

func (l *Lexer) addText(t TokenType, text string) {
	l.tokens = append(l.tokens, Token{Type: t, Text: text, Line: l.tokLine, Col: l.tokCol})
}

// Lex scans the whole source and returns its tokens.
func (l *Lexer) Lex() []Token {
	for !l.isAtEnd() {
		l.tokLine = l.line
		l.tokCol = l.col
		l.scanToken()
	}
	return l.tokens
}

func (l *Lexer) scanToken() {
	ch := l.advance()
	switch ch {
	case ' ', '\t', '\r', '\f', '\n':
		// whitespace carries no meaning for the parser
	case '(':
		l.add(LPAREN)
	case ')':
		l.add(RPAREN)
	case '{':
		l.add(LBRACE)
	case '}':
		l.add(RBRACE)
	case '[':
		l.add(LBRACKET)
	case ']':
		l.add(RBRACKET)
	case ',':
		l.add(COMMA)
	case '.':
		l.add(DOT)
	case ';':
		l.add(SEMI)
	case ':':
		l.add(COLON)
	case '?':
		l.add(QUESTION)
	case '+':
		l.add(PLUS)
	case '*':
		l.add(STAR)
	case '%':
		l.add(PERCENT)
	case '-':
		if l.match('>') {
			l.add(ARROW)
		} else {
			l.add(MINUS)
		}
	case '!':
		if l.match('=') {
			l.add(NEQ)
		} else {
			l.add(BANG)
		}
	case '=':
		if l.match('=') {
			l.add(EQ)
		} else {
			l.add(ASSIGN)
		}
	case '<':
		if l.match('=') {
			l.add(LESS_EQ)
		} else {
			l.add(LESS)
		}
	case '>':
		if l.match('=') {
			l.add(GREATER_EQ)
		} else {
			l.add(GREATER)
		}
	case '&':
		if l.match('&') {
			l.add(AND_AND)
		}
		// a lone '&' is dropped
	case '|':
		if l.match('|') {
			l.add(OR_OR)
		}
	case '/':
		switch {
		case l.match('/'):
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		case l.match('*'):
			l.blockComment()
		default:
			l.add(SLASH)
		}
	case '"':
		l.stringToken()
	default:
		switch {
		case isDigit(ch):
			l.numberToken()
		case isIdentStart(ch):
			l.identToken()
		}
		// anything else is dropped
	}
}

// blockComment consumes up to and including the closing "*/". Comments
// do not nest; an unterminated comment swallows the rest of the file.
func (l *Lexer) blockComment() {
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

// stringToken scans a string literal. Strings may not span lines; if the
// closing quote is missing before a newline or end of input, the opening
// quote is dropped and scanning resumes after it.
func (l *Lexer) stringToken() {
	startCur, startLine, startCol := l.cur, l.line, l.col
	var b strings.Builder
	for !l.isAtEnd() {
		ch := l.peek()
		if ch == '\n' {
			break
		}
		l.advance()
		if ch == '"' {
			l.addText(STRING, b.String())
			return
		}
		if ch == '\\' && !l.isAtEnd() {
			esc := l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				// unknown escapes pass through untouched
				b.WriteByte('\\')
				b.WriteByte(esc)
			}
			continue
		}
		b.WriteByte(ch)
	}
	// unterminated: rewind to just after the opening quote
	l.cur, l.line, l.col = startCur, startLine, startCol
}

func (l *Lexer) numberToken() {
	start := l.cur - 1
	for !l.isAtEnd() && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.advance()
		for !l.isAtEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	text := l.src[start:l.cur]
	n, _ := strconv.ParseFloat(text, 64)
	l.tokens = append(l.tokens, Token{Type: NUMBER, Text: text, Num: n, Line: l.tokLine, Col: l.tokCol})
}

func (l *Lexer) identToken() {
	start := l.cur - 1
	for !l.isAtEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	text := l.src[start:l.cur]
	if kw, ok := keywords[text]; ok {
		l.add(kw)
		return
	}
	l.addText(ID, text)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
