package questicle

import (
	"fmt"
	"strings"
)

// FormatProgram renders a syntax tree back to canonical source. Unlike
// the token formatter it works from the parsed tree, so comments are
// gone and layout is fully normalized: four-space indent, one statement
// per line, braces around every control-flow body.
func FormatProgram(prog *Program) string {
	r := &renderer{}
	for _, s := range prog.Statements {
		r.stmt(s)
	}
	return r.b.String()
}

type renderer struct {
	b     strings.Builder
	depth int
}

func (r *renderer) line(s string) {
	r.b.WriteString(strings.Repeat("    ", r.depth))
	r.b.WriteString(s)
	r.b.WriteByte('\n')
}

func (r *renderer) stmt(s Stmt) {
	switch st := s.(type) {
	case *LetStmt:
		if fn, ok := st.Init.(*FnExpr); ok {
			// a function annotation is re-derived from the literal on
			// re-parse, so the declaration form loses nothing
			if _, isFn := st.Type.(*FuncTypeExpr); isFn || st.Type == nil {
				r.fnDecl(st.Name, fn)
				return
			}
		}
		ann := ""
		if st.Type != nil {
			ann = ": " + renderTypeExpr(st.Type)
		}
		r.line(fmt.Sprintf("let %s%s = %s;", st.Name, ann, renderExpr(st.Init)))
	case *ExprStmt:
		r.line(renderExpr(st.X) + ";")
	case *BlockStmt:
		r.line("{")
		r.depth++
		for _, inner := range st.Statements {
			r.stmt(inner)
		}
		r.depth--
		r.line("}")
	case *IfStmt:
		r.line("if (" + renderExpr(st.Cond) + ") {")
		r.body(st.Then)
		if st.Else != nil {
			r.line("} else {")
			r.body(st.Else)
		}
		r.line("}")
	case *WhileStmt:
		r.line("while (" + renderExpr(st.Cond) + ") {")
		r.body(st.Body)
		r.line("}")
	case *ForStmt:
		r.line("for (" + st.Name + " in " + renderExpr(st.Iter) + ") {")
		r.body(st.Body)
		r.line("}")
	case *ReturnStmt:
		if st.Value == nil {
			r.line("return;")
		} else {
			r.line("return " + renderExpr(st.Value) + ";")
		}
	case *BreakStmt:
		r.line("break;")
	case *ContinueStmt:
		r.line("continue;")
	}
}

// body renders a control-flow body at one deeper level, unwrapping a
// block so its braces are not doubled.
func (r *renderer) body(s Stmt) {
	r.depth++
	if blk, ok := s.(*BlockStmt); ok {
		for _, inner := range blk.Statements {
			r.stmt(inner)
		}
	} else {
		r.stmt(s)
	}
	r.depth--
}

func (r *renderer) fnDecl(name string, fn *FnExpr) {
	r.line("fn " + name + fnHead(fn) + " {")
	r.depth++
	for _, s := range fn.Body {
		r.stmt(s)
	}
	r.depth--
	r.line("}")
}

func fnHead(fn *FnExpr) string {
	parts := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		parts[i] = p.Name
		if p.Type != nil {
			parts[i] += ": " + renderTypeExpr(p.Type)
		}
	}
	head := "(" + strings.Join(parts, ", ") + ")"
	if fn.Ret != nil {
		head += " -> " + renderTypeExpr(fn.Ret)
	}
	return head
}

// renderExpr prints an expression with parentheses only where a child
// binds looser than its parent requires.
func renderExpr(e Expr) string {
	return renderPrec(e, 0)
}

// precedence levels, loosest first
const (
	precAssign = iota + 1
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
)

func binPrec(op BinOp) int {
	switch op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNe:
		return precEquality
	case OpLt, OpLe, OpGt, OpGe:
		return precComparison
	case OpAdd, OpSub:
		return precTerm
	default:
		return precFactor
	}
}

func renderPrec(e Expr, min int) string {
	switch ex := e.(type) {
	case *NumberLit:
		return formatNumber(ex.Value)
	case *StringLit:
		return quoteString(ex.Value)
	case *BoolLit:
		if ex.Value {
			return "true"
		}
		return "false"
	case *NullLit:
		return "null"
	case *VarExpr:
		return ex.Name
	case *AssignExpr:
		s := ex.Name + " = " + renderPrec(ex.Value, precAssign)
		return parenIf(s, precAssign < min)
	case *BinaryExpr:
		p := binPrec(ex.Op)
		s := renderPrec(ex.Left, p) + " " + ex.Op.String() + " " + renderPrec(ex.Right, p+1)
		return parenIf(s, p < min)
	case *UnaryExpr:
		s := ex.Op.String() + renderPrec(ex.X, precUnary)
		return parenIf(s, precUnary < min)
	case *CallExpr:
		args := make([]string, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = renderPrec(a, 0)
		}
		return renderPrec(ex.Callee, precCall) + "(" + strings.Join(args, ", ") + ")"
	case *FnExpr:
		var b strings.Builder
		b.WriteString("fn " + fnHead(ex) + " {")
		if len(ex.Body) > 0 {
			sub := &renderer{depth: 1}
			for _, s := range ex.Body {
				sub.stmt(s)
			}
			b.WriteString("\n" + sub.b.String() + "}")
		} else {
			b.WriteString("}")
		}
		return b.String()
	case *ListExpr:
		items := make([]string, len(ex.Items))
		for i, item := range ex.Items {
			items[i] = renderPrec(item, 0)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *MapExpr:
		if len(ex.Entries) == 0 {
			return "{}"
		}
		parts := make([]string, len(ex.Entries))
		for i, entry := range ex.Entries {
			parts[i] = entry.Key + ": " + renderPrec(entry.Value, 0)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case *IndexExpr:
		return renderPrec(ex.Target, precCall) + "[" + renderPrec(ex.Index, 0) + "]"
	case *FieldExpr:
		return renderPrec(ex.Target, precCall) + "." + ex.Name
	}
	return ""
}

func parenIf(s string, need bool) string {
	if need {
		return "(" + s + ")"
	}
	return s
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
	return b.String()
}

// renderTypeExpr prints a surface type annotation.
func renderTypeExpr(te TypeExpr) string {
	switch t := te.(type) {
	case *NumberType:
		return "number"
	case *StringType:
		return "string"
	case *BoolType:
		return "bool"
	case *NullType:
		return "null"
	case *AnyType:
		return "any"
	case *ListType:
		return "list<" + renderTypeExpr(t.Elem) + ">"
	case *MapType:
		return "map<" + renderTypeExpr(t.Value) + ">"
	case *FuncTypeExpr:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = renderTypeExpr(p)
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + renderTypeExpr(t.Ret)
	case *RecordType:
		parts := make([]string, len(t.Fields))
		for i, fld := range t.Fields {
			parts[i] = fld.Name + ": " + renderTypeExpr(fld.Type)
		}
		return "record{" + strings.Join(parts, ", ") + "}"
	}
	return "any"
}
