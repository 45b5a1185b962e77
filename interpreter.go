package questicle

import (
	"fmt"
	"math"
)

// RuntimeError is any failure raised while evaluating a program. It
// carries a message only; positions belong to parse errors.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return e.Msg }

func runtimeErrf(format string, args ...any) error {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// Interpreter walks the syntax tree directly. Each call keeps a current
// environment pointer; blocks and calls push child frames and restore
// the old pointer on the way out.
type Interpreter struct {
	Globals *Env
	env     *Env
	host    HostAPI
}

// NewInterpreter creates an interpreter whose globals hold the standard
// library, wired to the given host.
func NewInterpreter(host HostAPI) *Interpreter {
	globals := NewEnv(nil)
	installStdlib(globals, host)
	return &Interpreter{Globals: globals, env: globals, host: host}
}

// Eval runs a whole program. It returns the result of the last
// statement: (value, true) when that statement produced one, or
// (Null, false) when it did not.
func (ip *Interpreter) Eval(prog *Program) (Value, bool, error) {
	var last Value
	var ok bool
	for _, s := range prog.Statements {
		var err error
		last, ok, err = ip.execStmt(s)
		if err != nil {
			return Null, false, err
		}
	}
	return last, ok, nil
}

// execStmt executes one statement. The boolean marks statements that
// produce a value: expression statements and return. Inside a sequence,
// the first such statement ends the sequence with its value.
func (ip *Interpreter) execStmt(s Stmt) (Value, bool, error) {
	switch st := s.(type) {
	case *LetStmt:
		v, err := ip.evalExpr(st.Init)
		if err != nil {
			return Null, false, err
		}
		ip.env.Define(st.Name, v)
		return Null, false, nil
	case *ExprStmt:
		v, err := ip.evalExpr(st.X)
		if err != nil {
			return Null, false, err
		}
		return v, true, nil
	case *BlockStmt:
		return ip.execBlock(st.Statements)
	case *IfStmt:
		cond, err := ip.evalExpr(st.Cond)
		if err != nil {
			return Null, false, err
		}
		if cond.Truthy() {
			return ip.execStmt(st.Then)
		}
		if st.Else != nil {
			return ip.execStmt(st.Else)
		}
		return Null, false, nil
	case *WhileStmt:
		for {
			cond, err := ip.evalExpr(st.Cond)
			if err != nil {
				return Null, false, err
			}
			if !cond.Truthy() {
				return Null, false, nil
			}
			v, ok, err := ip.execStmt(st.Body)
			if err != nil {
				return Null, false, err
			}
			if ok {
				return v, true, nil
			}
		}
	case *ForStmt:
		iter, err := ip.evalExpr(st.Iter)
		if err != nil {
			return Null, false, err
		}
		if iter.Tag != VTList {
			return Null, false, runtimeErrf("for expects list")
		}
		for _, item := range iter.AsList() {
			frame := NewEnv(ip.env)
			frame.Define(st.Name, item)
			saved := ip.env
			ip.env = frame
			v, ok, err := ip.execStmt(st.Body)
			ip.env = saved
			if err != nil {
				return Null, false, err
			}
			if ok {
				return v, true, nil
			}
		}
		return Null, false, nil
	case *ReturnStmt:
		if st.Value == nil {
			return Null, true, nil
		}
		v, err := ip.evalExpr(st.Value)
		if err != nil {
			return Null, false, err
		}
		return v, true, nil
	case *BreakStmt, *ContinueStmt:
		// accepted but inert; loops run to completion
		return Null, false, nil
	}
	return Null, false, nil
}

// execBlock runs stmts in a fresh child frame, stopping at the first
// statement that produces a value.
func (ip *Interpreter) execBlock(stmts []Stmt) (Value, bool, error) {
	saved := ip.env
	ip.env = NewEnv(saved)
	defer func() { ip.env = saved }()
	for _, s := range stmts {
		v, ok, err := ip.execStmt(s)
		if err != nil {
			return Null, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return Null, false, nil
}

func (ip *Interpreter) evalExpr(e Expr) (Value, error) {
	switch ex := e.(type) {
	case *NumberLit:
		return Num(ex.Value), nil
	case *StringLit:
		return Str(ex.Value), nil
	case *BoolLit:
		return Bool(ex.Value), nil
	case *NullLit:
		return Null, nil
	case *VarExpr:
		v, ok := ip.env.Get(ex.Name)
		if !ok {
			return Null, runtimeErrf("Undefined variable '%s'", ex.Name)
		}
		return v, nil
	case *AssignExpr:
		v, err := ip.evalExpr(ex.Value)
		if err != nil {
			return Null, err
		}
		if err := ip.env.Assign(ex.Name, v); err != nil {
			return Null, err
		}
		return v, nil
	case *BinaryExpr:
		return ip.evalBinary(ex)
	case *UnaryExpr:
		x, err := ip.evalExpr(ex.X)
		if err != nil {
			return Null, err
		}
		if ex.Op == OpNeg {
			if x.Tag != VTNumber {
				return Null, runtimeErrf("Unary - expects number")
			}
			return Num(-x.AsNumber()), nil
		}
		return Bool(!x.Truthy()), nil
	case *CallExpr:
		callee, err := ip.evalExpr(ex.Callee)
		if err != nil {
			return Null, err
		}
		args := make([]Value, len(ex.Args))
		for i, a := range ex.Args {
			args[i], err = ip.evalExpr(a)
			if err != nil {
				return Null, err
			}
		}
		return ip.callValue(callee, args)
	case *FnExpr:
		params := make([]string, len(ex.Params))
		for i, p := range ex.Params {
			params[i] = p.Name
		}
		return FuncOf(&Function{Params: params, Body: ex.Body, Env: ip.env}), nil
	case *ListExpr:
		items := make([]Value, len(ex.Items))
		for i, item := range ex.Items {
			v, err := ip.evalExpr(item)
			if err != nil {
				return Null, err
			}
			items[i] = v
		}
		return List(items), nil
	case *MapExpr:
		m := make(map[string]Value, len(ex.Entries))
		for _, entry := range ex.Entries {
			v, err := ip.evalExpr(entry.Value)
			if err != nil {
				return Null, err
			}
			m[entry.Key] = v
		}
		return MapOf(m), nil
	case *IndexExpr:
		return ip.evalIndex(ex)
	case *FieldExpr:
		target, err := ip.evalExpr(ex.Target)
		if err != nil {
			return Null, err
		}
		if target.Tag == VTMap {
			if v, ok := target.AsMap()[ex.Name]; ok {
				return v, nil
			}
		}
		return Null, nil
	}
	return Null, nil
}

func (ip *Interpreter) evalBinary(ex *BinaryExpr) (Value, error) {
	left, err := ip.evalExpr(ex.Left)
	if err != nil {
		return Null, err
	}
	right, err := ip.evalExpr(ex.Right)
	if err != nil {
		return Null, err
	}

	switch ex.Op {
	case OpAdd:
		return addValues(left, right)
	case OpSub, OpMul, OpDiv, OpMod:
		if left.Tag != VTNumber || right.Tag != VTNumber {
			return Null, runtimeErrf("number operands required")
		}
		a, b := left.AsNumber(), right.AsNumber()
		switch ex.Op {
		case OpSub:
			return Num(a - b), nil
		case OpMul:
			return Num(a * b), nil
		case OpDiv:
			return Num(a / b), nil
		default:
			return Num(math.Mod(a, b)), nil
		}
	case OpLt, OpLe, OpGt, OpGe:
		if left.Tag != VTNumber || right.Tag != VTNumber {
			return Null, runtimeErrf("number operands required")
		}
		a, b := left.AsNumber(), right.AsNumber()
		switch ex.Op {
		case OpLt:
			return Bool(a < b), nil
		case OpLe:
			return Bool(a <= b), nil
		case OpGt:
			return Bool(a > b), nil
		default:
			return Bool(a >= b), nil
		}
	case OpEq:
		return Bool(valueEq(left, right)), nil
	case OpNe:
		return Bool(!valueEq(left, right)), nil
	case OpAnd:
		// both sides are evaluated; truthiness decides
		return Bool(left.Truthy() && right.Truthy()), nil
	case OpOr:
		return Bool(left.Truthy() || right.Truthy()), nil
	}
	return Null, nil
}

// addValues implements "+": numeric addition, string concatenation, and
// the permissive mixed form where one string side stringifies the other.
func addValues(left, right Value) (Value, error) {
	switch {
	case left.Tag == VTNumber && right.Tag == VTNumber:
		return Num(left.AsNumber() + right.AsNumber()), nil
	case left.Tag == VTString && right.Tag == VTString:
		return Str(left.AsString() + right.AsString()), nil
	case left.Tag == VTString:
		return Str(left.AsString() + displayString(right)), nil
	case right.Tag == VTString:
		return Str(displayString(left) + right.AsString()), nil
	}
	return Null, runtimeErrf("invalid operands for +")
}

func (ip *Interpreter) evalIndex(ex *IndexExpr) (Value, error) {
	target, err := ip.evalExpr(ex.Target)
	if err != nil {
		return Null, err
	}
	index, err := ip.evalExpr(ex.Index)
	if err != nil {
		return Null, err
	}
	// out-of-range and mismatched indexing yield null, never an error
	switch target.Tag {
	case VTList:
		if index.Tag != VTNumber {
			return Null, nil
		}
		items := target.AsList()
		i := int(index.AsNumber())
		if i < 0 || i >= len(items) {
			return Null, nil
		}
		return items[i], nil
	case VTMap:
		if index.Tag != VTString {
			return Null, nil
		}
		if v, ok := target.AsMap()[index.AsString()]; ok {
			return v, nil
		}
	}
	return Null, nil
}

// callValue invokes a callable with already-evaluated arguments.
// Extra arguments are ignored; missing ones bind null. A body with no
// value-producing statement returns null.
func (ip *Interpreter) callValue(callee Value, args []Value) (Value, error) {
	if callee.Tag != VTFunc {
		return Null, runtimeErrf("attempt to call non-function")
	}
	fn := callee.AsFunc()
	if fn.Native != nil {
		return fn.Native(args, ip.env)
	}
	frame := NewEnv(fn.Env)
	for i, name := range fn.Params {
		if i < len(args) {
			frame.Define(name, args[i])
		} else {
			frame.Define(name, Null)
		}
	}
	saved := ip.env
	ip.env = frame
	defer func() { ip.env = saved }()
	for _, s := range fn.Body {
		v, ok, err := ip.execStmt(s)
		if err != nil {
			return Null, err
		}
		if ok {
			return v, nil
		}
	}
	return Null, nil
}
