package questicle

import "fmt"

// ParseErrorKind discriminates the three ways parsing can fail.
type ParseErrorKind int

const (
	// ParseEOF: the token stream ran out mid-construct.
	ParseEOF ParseErrorKind = iota
	// ParseUnexpected: a token that cannot start the construct at hand.
	ParseUnexpected
	// ParseExpected: a specific token or construct was required.
	ParseExpected
)

// ParseError is the single error type produced by the parser.
type ParseError struct {
	Kind     ParseErrorKind
	Expected string // only for ParseExpected
	Line     int
	Col      int
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseEOF:
		return "unexpected end of input"
	case ParseUnexpected:
		return fmt.Sprintf("unexpected token at line %d, col %d", e.Line, e.Col)
	default:
		return fmt.Sprintf("expected %s at line %d, col %d", e.Expected, e.Line, e.Col)
	}
}

// Parser is a recursive-descent parser over the lexer's token stream.
// One token of lookahead resolves every ambiguity in the grammar,
// including block-vs-map-literal at statement position.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser lexes src and prepares a parser over its tokens.
func NewParser(src string) *Parser {
	return &Parser{tokens: NewLexer(src).Lex()}
}

// Parse parses a whole program. It stops at the first error.
func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}
	for !p.atEnd() {
		s, err := p.declaration()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, s)
	}
	return prog, nil
}

// ----- token plumbing -----

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *Parser) peek() (Token, bool) {
	if p.atEnd() {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) check(t TokenType) bool {
	tok, ok := p.peek()
	return ok && tok.Type == t
}

// checkAt looks n tokens past the current position.
func (p *Parser) checkAt(n int, t TokenType) bool {
	idx := p.pos + n
	return idx < len(p.tokens) && p.tokens[idx].Type == t
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *Parser) matches(t TokenType) bool {
	if p.check(t) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) expected(what string) error {
	tok, ok := p.peek()
	if !ok {
		return &ParseError{Kind: ParseEOF}
	}
	return &ParseError{Kind: ParseExpected, Expected: what, Line: tok.Line, Col: tok.Col}
}

func (p *Parser) unexpected() error {
	tok, ok := p.peek()
	if !ok {
		return &ParseError{Kind: ParseEOF}
	}
	return &ParseError{Kind: ParseUnexpected, Line: tok.Line, Col: tok.Col}
}

func (p *Parser) consume(t TokenType, what string) (Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return Token{}, p.expected(what)
}

// ----- declarations -----

func (p *Parser) declaration() (Stmt, error) {
	if p.matches(LET) {
		return p.letDecl()
	}
	// "fn" opens a declaration only when a name follows; otherwise it is
	// a function literal and falls through to expression parsing.
	if p.check(FN) && p.checkAt(1, ID) {
		p.advance()
		return p.fnDecl()
	}
	return p.statement()
}

func (p *Parser) letDecl() (Stmt, error) {
	name, err := p.consume(ID, "identifier")
	if err != nil {
		return nil, err
	}
	if !p.matches(COLON) {
		return nil, p.expected(": type annotation")
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(ASSIGN, "="); err != nil {
		return nil, err
	}
	init, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.matches(SEMI)
	return &LetStmt{Name: name.Text, Type: ty, Init: init}, nil
}

// fnDecl parses "fn name(params) [-> type] { body }" and desugars it to
// a let binding on a function literal. When every parameter carries a
// type and a return type is given, the binding gets the matching
// function annotation; otherwise it is left unannotated.
func (p *Parser) fnDecl() (Stmt, error) {
	name, err := p.consume(ID, "identifier")
	if err != nil {
		return nil, err
	}
	fn, err := p.functionLiteral()
	if err != nil {
		return nil, err
	}
	var ann TypeExpr
	if fn.Ret != nil {
		params := make([]TypeExpr, 0, len(fn.Params))
		fully := true
		for _, prm := range fn.Params {
			if prm.Type == nil {
				fully = false
				break
			}
			params = append(params, prm.Type)
		}
		if fully {
			ann = &FuncTypeExpr{Params: params, Ret: fn.Ret}
		}
	}
	return &LetStmt{Name: name.Text, Type: ann, Init: fn}, nil
}

// ----- statements -----

func (p *Parser) statement() (Stmt, error) {
	switch {
	case p.matches(IF):
		return p.ifStmt()
	case p.matches(WHILE):
		return p.whileStmt()
	case p.matches(FOR):
		return p.forStmt()
	case p.matches(RETURN):
		return p.returnStmt()
	case p.matches(BREAK):
		p.matches(SEMI)
		return &BreakStmt{}, nil
	case p.matches(CONTINUE):
		p.matches(SEMI)
		return &ContinueStmt{}, nil
	case p.check(LBRACE):
		// "{" opens a map literal only when "ident :" follows; anything
		// else, including "}", makes it a block.
		if p.checkAt(1, ID) && p.checkAt(2, COLON) {
			break
		}
		p.advance()
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Statements: stmts}, nil
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.matches(SEMI)
	return &ExprStmt{X: expr}, nil
}

// block parses statements up to the closing "}".
func (p *Parser) block() ([]Stmt, error) {
	var stmts []Stmt
	for !p.check(RBRACE) {
		if p.atEnd() {
			return nil, &ParseError{Kind: ParseEOF}
		}
		s, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance()
	return stmts, nil
}

func (p *Parser) ifStmt() (Stmt, error) {
	if _, err := p.consume(LPAREN, "("); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(RPAREN, ")"); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var els Stmt
	if p.matches(ELSE) {
		els, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) whileStmt() (Stmt, error) {
	if _, err := p.consume(LPAREN, "("); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(RPAREN, ")"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body}, nil
}

func (p *Parser) forStmt() (Stmt, error) {
	if _, err := p.consume(LPAREN, "("); err != nil {
		return nil, err
	}
	name, err := p.consume(ID, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(IN, "in"); err != nil {
		return nil, err
	}
	iter, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(RPAREN, ")"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Name: name.Text, Iter: iter, Body: body}, nil
}

func (p *Parser) returnStmt() (Stmt, error) {
	if p.matches(SEMI) {
		return &ReturnStmt{}, nil
	}
	val, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.matches(SEMI)
	return &ReturnStmt{Value: val}, nil
}

// ----- expressions -----

func (p *Parser) expression() (Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.matches(ASSIGN) {
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		v, ok := expr.(*VarExpr)
		if !ok {
			return nil, p.expected("assignable expression")
		}
		return &AssignExpr{Name: v.Name, Value: value}, nil
	}
	return expr, nil
}

func (p *Parser) or() (Expr, error) {
	expr, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.matches(OR_OR) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: OpOr, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) and() (Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.matches(AND_AND) {
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: OpAnd, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) equality() (Expr, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch {
		case p.matches(EQ):
			op = OpEq
		case p.matches(NEQ):
			op = OpNe
		default:
			return expr, nil
		}
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
}

func (p *Parser) comparison() (Expr, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch {
		case p.matches(LESS):
			op = OpLt
		case p.matches(LESS_EQ):
			op = OpLe
		case p.matches(GREATER):
			op = OpGt
		case p.matches(GREATER_EQ):
			op = OpGe
		default:
			return expr, nil
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
}

func (p *Parser) term() (Expr, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch {
		case p.matches(PLUS):
			op = OpAdd
		case p.matches(MINUS):
			op = OpSub
		default:
			return expr, nil
		}
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
}

func (p *Parser) factor() (Expr, error) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch {
		case p.matches(STAR):
			op = OpMul
		case p.matches(SLASH):
			op = OpDiv
		case p.matches(PERCENT):
			op = OpMod
		default:
			return expr, nil
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
}

func (p *Parser) unary() (Expr, error) {
	switch {
	case p.matches(MINUS):
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: OpNeg, X: x}, nil
	case p.matches(BANG):
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: OpNot, X: x}, nil
	}
	return p.call()
}

func (p *Parser) call() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.matches(LPAREN):
			var args []Expr
			if !p.check(RPAREN) {
				for {
					arg, err := p.expression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.matches(COMMA) {
						break
					}
				}
			}
			if _, err := p.consume(RPAREN, ")"); err != nil {
				return nil, err
			}
			expr = &CallExpr{Callee: expr, Args: args}
		case p.matches(LBRACKET):
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(RBRACKET, "]"); err != nil {
				return nil, err
			}
			expr = &IndexExpr{Target: expr, Index: idx}
		case p.matches(DOT):
			name, err := p.consume(ID, "field name")
			if err != nil {
				return nil, err
			}
			expr = &FieldExpr{Target: expr, Name: name.Text}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) primary() (Expr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, &ParseError{Kind: ParseEOF}
	}
	switch tok.Type {
	case TRUE:
		p.advance()
		return &BoolLit{Value: true}, nil
	case FALSE:
		p.advance()
		return &BoolLit{Value: false}, nil
	case NULL:
		p.advance()
		return &NullLit{}, nil
	case NUMBER:
		p.advance()
		return &NumberLit{Value: tok.Num}, nil
	case STRING:
		p.advance()
		return &StringLit{Value: tok.Text}, nil
	case ID:
		p.advance()
		return &VarExpr{Name: tok.Text}, nil
	case FN:
		p.advance()
		return p.functionLiteral()
	case LPAREN:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(RPAREN, ")"); err != nil {
			return nil, err
		}
		return expr, nil
	case LBRACKET:
		p.advance()
		return p.listLiteral()
	case LBRACE:
		p.advance()
		return p.mapLiteral()
	}
	return nil, p.unexpected()
}

func (p *Parser) listLiteral() (Expr, error) {
	var items []Expr
	if !p.check(RBRACKET) {
		for {
			item, err := p.expression()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if !p.matches(COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(RBRACKET, "]"); err != nil {
		return nil, err
	}
	return &ListExpr{Items: items}, nil
}

func (p *Parser) mapLiteral() (Expr, error) {
	var entries []MapEntry
	if !p.check(RBRACE) {
		for {
			key, err := p.consume(ID, "map key")
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(COLON, ":"); err != nil {
				return nil, err
			}
			val, err := p.expression()
			if err != nil {
				return nil, err
			}
			entries = append(entries, MapEntry{Key: key.Text, Value: val})
			if !p.matches(COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(RBRACE, "}"); err != nil {
		return nil, err
	}
	return &MapExpr{Entries: entries}, nil
}

// functionLiteral parses "(params) [-> type] { body }", the shared tail
// of function declarations and literals.
func (p *Parser) functionLiteral() (*FnExpr, error) {
	if _, err := p.consume(LPAREN, "("); err != nil {
		return nil, err
	}
	var params []Param
	if !p.check(RPAREN) {
		for {
			name, err := p.consume(ID, "parameter name")
			if err != nil {
				return nil, err
			}
			var ty TypeExpr
			if p.matches(COLON) {
				ty, err = p.parseType()
				if err != nil {
					return nil, err
				}
			}
			params = append(params, Param{Name: name.Text, Type: ty})
			if !p.matches(COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(RPAREN, ")"); err != nil {
		return nil, err
	}
	var ret TypeExpr
	if p.matches(ARROW) {
		var err error
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(LBRACE, "{"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &FnExpr{Params: params, Ret: ret, Body: body}, nil
}

// ----- type annotations -----

func (p *Parser) parseType() (TypeExpr, error) {
	if p.matches(NULL) {
		return &NullType{}, nil
	}
	if p.matches(FN) {
		return p.fnType()
	}
	tok, ok := p.peek()
	if !ok {
		return nil, &ParseError{Kind: ParseEOF}
	}
	if tok.Type != ID {
		return nil, p.expected("type")
	}
	p.advance()
	switch tok.Text {
	case "number":
		return &NumberType{}, nil
	case "string":
		return &StringType{}, nil
	case "bool":
		return &BoolType{}, nil
	case "any":
		return &AnyType{}, nil
	case "list":
		if _, err := p.consume(LESS, "<"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(GREATER, ">"); err != nil {
			return nil, err
		}
		return &ListType{Elem: elem}, nil
	case "map":
		if _, err := p.consume(LESS, "<"); err != nil {
			return nil, err
		}
		val, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(GREATER, ">"); err != nil {
			return nil, err
		}
		return &MapType{Value: val}, nil
	case "record":
		return p.recordType()
	}
	return nil, &ParseError{Kind: ParseExpected, Expected: "type", Line: tok.Line, Col: tok.Col}
}

func (p *Parser) fnType() (TypeExpr, error) {
	if _, err := p.consume(LPAREN, "("); err != nil {
		return nil, err
	}
	var params []TypeExpr
	if !p.check(RPAREN) {
		for {
			ty, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, ty)
			if !p.matches(COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(RPAREN, ")"); err != nil {
		return nil, err
	}
	if _, err := p.consume(ARROW, "->"); err != nil {
		return nil, err
	}
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &FuncTypeExpr{Params: params, Ret: ret}, nil
}

func (p *Parser) recordType() (TypeExpr, error) {
	if _, err := p.consume(LBRACE, "{"); err != nil {
		return nil, err
	}
	var fields []RecordField
	if !p.check(RBRACE) {
		for {
			name, err := p.consume(ID, "field name")
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(COLON, ":"); err != nil {
				return nil, err
			}
			ty, err := p.parseType()
			if err != nil {
				return nil, err
			}
			fields = append(fields, RecordField{Name: name.Text, Type: ty})
			if !p.matches(COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(RBRACE, "}"); err != nil {
		return nil, err
	}
	return &RecordType{Fields: fields}, nil
}
