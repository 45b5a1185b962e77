package questicle

// The syntax tree is a pair of closed sum types, Stmt and Expr, plus a
// third small sum for surface type annotations. Every node is a pointer
// to a struct; the marker methods keep the sets closed.

// Program is a parsed source file.
type Program struct {
	Statements []Stmt
}

// ----- statements -----

type Stmt interface{ stmtNode() }

// LetStmt binds a new name in the current scope. Named function
// declarations desugar to a LetStmt whose Init is a FnExpr.
type LetStmt struct {
	Name string
	Type TypeExpr // annotation; nil only for desugared fn declarations
	Init Expr
}

type ExprStmt struct {
	X Expr
}

type BlockStmt struct {
	Statements []Stmt
}

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

type WhileStmt struct {
	Cond Expr
	Body Stmt
}

type ForStmt struct {
	Name string
	Iter Expr
	Body Stmt
}

type ReturnStmt struct {
	Value Expr // nil for a bare return
}

type BreakStmt struct{}

type ContinueStmt struct{}

func (*LetStmt) stmtNode()      {}
func (*ExprStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()    {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}

// ----- expressions -----

type Expr interface{ exprNode() }

type NumberLit struct {
	Value float64
}

type StringLit struct {
	Value string
}

type BoolLit struct {
	Value bool
}

type NullLit struct{}

type VarExpr struct {
	Name string
}

// AssignExpr writes to an existing binding. The target is always a bare
// name; the parser rejects anything else.
type AssignExpr struct {
	Name  string
	Value Expr
}

type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
}

type UnaryExpr struct {
	Op UnOp
	X  Expr
}

type CallExpr struct {
	Callee Expr
	Args   []Expr
}

// FnExpr is a function literal. Ret is nil when no return type is given.
type FnExpr struct {
	Params []Param
	Ret    TypeExpr
	Body   []Stmt
}

type Param struct {
	Name string
	Type TypeExpr // nil when untyped
}

type ListExpr struct {
	Items []Expr
}

type MapExpr struct {
	Entries []MapEntry
}

type MapEntry struct {
	Key   string
	Value Expr
}

type IndexExpr struct {
	Target Expr
	Index  Expr
}

type FieldExpr struct {
	Target Expr
	Name   string
}

func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*NullLit) exprNode()    {}
func (*VarExpr) exprNode()    {}
func (*AssignExpr) exprNode() {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}
func (*FnExpr) exprNode()     {}
func (*ListExpr) exprNode()   {}
func (*MapExpr) exprNode()    {}
func (*IndexExpr) exprNode()  {}
func (*FieldExpr) exprNode()  {}

// ----- operators -----

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	}
	return "?"
}

type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
)

func (op UnOp) String() string {
	if op == OpNeg {
		return "-"
	}
	return "!"
}

// ----- type annotations -----

// TypeExpr is the surface syntax of a type annotation. The checker
// lowers these to its own semantic Type lattice.
type TypeExpr interface{ typeExprNode() }

type NumberType struct{}
type StringType struct{}
type BoolType struct{}
type NullType struct{}
type AnyType struct{}

type ListType struct {
	Elem TypeExpr
}

type MapType struct {
	Value TypeExpr
}

type FuncTypeExpr struct {
	Params []TypeExpr
	Ret    TypeExpr
}

type RecordType struct {
	Fields []RecordField
}

type RecordField struct {
	Name string
	Type TypeExpr
}

func (*NumberType) typeExprNode()   {}
func (*StringType) typeExprNode()   {}
func (*BoolType) typeExprNode()     {}
func (*NullType) typeExprNode()     {}
func (*AnyType) typeExprNode()      {}
func (*ListType) typeExprNode()     {}
func (*MapType) typeExprNode()      {}
func (*FuncTypeExpr) typeExprNode() {}
func (*RecordType) typeExprNode()   {}
