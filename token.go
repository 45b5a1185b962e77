package questicle

// TokenType represents the kind of token.
type TokenType int

const (
	// Punctuation
	LPAREN TokenType = iota // "("
	RPAREN                  // ")"
	LBRACE                  // "{"
	RBRACE                  // "}"
	LBRACKET                // "["
	RBRACKET                // "]"
	COMMA                   // ","
	DOT                     // "."
	SEMI                    // ";"
	COLON                   // ":"
	QUESTION                // "?"

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	BANG
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ
	AND_AND // "&&"
	OR_OR   // "||"
	ARROW   // "->"

	// Literals & identifiers
	ID
	STRING
	NUMBER

	// Keywords
	LET
	FN
	IF
	ELSE
	WHILE
	FOR
	IN
	RETURN
	TRUE
	FALSE
	NULL
	BREAK
	CONTINUE
)

// Token is a lexical token. Text carries the identifier name or the
// unescaped string payload; Num carries the numeric value.
type Token struct {
	Type TokenType
	Text string
	Num  float64
	Line int // 1-based
	Col  int // 1-based, column of the token's first character
}

var keywords = map[string]TokenType{
	"let":      LET,
	"fn":       FN,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"return":   RETURN,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
	"break":    BREAK,
	"continue": CONTINUE,
}
