package questicle

import (
	"fmt"
	"maps"
	"strings"
)

// The checker is advisory: it walks the whole program, accumulates
// diagnostics, and never stops the interpreter. Types form a small
// structural lattice with "any" on top; "null" is compatible with
// everything, so optional values need no special syntax.

// TypeKind discriminates semantic types.
type TypeKind int

const (
	KindNumber TypeKind = iota
	KindString
	KindBool
	KindNull
	KindAny
	KindList
	KindMap
	KindFunc
)

// Type is a semantic type. Elem is the list element or map value type;
// Params and Ret describe functions.
type Type struct {
	Kind   TypeKind
	Elem   *Type
	Params []Type
	Ret    *Type
}

var (
	TNumber = Type{Kind: KindNumber}
	TString = Type{Kind: KindString}
	TBool   = Type{Kind: KindBool}
	TNull   = Type{Kind: KindNull}
	TAny    = Type{Kind: KindAny}
)

func TList(elem Type) Type { return Type{Kind: KindList, Elem: &elem} }
func TMap(val Type) Type   { return Type{Kind: KindMap, Elem: &val} }

func TFunc(params []Type, ret Type) Type {
	return Type{Kind: KindFunc, Params: params, Ret: &ret}
}

func (t Type) String() string {
	switch t.Kind {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindAny:
		return "any"
	case KindList:
		return "list<" + t.Elem.String() + ">"
	case KindMap:
		return "map<" + t.Elem.String() + ">"
	case KindFunc:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + t.Ret.String()
	}
	return "?"
}

// Equal reports exact structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindList, KindMap:
		return t.Elem.Equal(*o.Elem)
	case KindFunc:
		if len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
		return t.Ret.Equal(*o.Ret)
	}
	return true
}

// IsCompatible reports whether a value of type a may flow into a slot of
// type b. Equal types always pass, "any" absorbs in both directions,
// null flows anywhere, and lists and maps are compared structurally.
// Non-equal function types are incompatible.
func IsCompatible(a, b Type) bool {
	if a.Equal(b) {
		return true
	}
	if a.Kind == KindAny || b.Kind == KindAny {
		return true
	}
	if a.Kind == KindNull {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindList, KindMap:
		return IsCompatible(*a.Elem, *b.Elem)
	}
	return false
}

// Unify joins two inferred types: equal types stay, "any" yields to the
// other side, lists and maps unify element-wise, everything else
// collapses to "any".
func Unify(a, b Type) Type {
	if a.Equal(b) {
		return a
	}
	if a.Kind == KindAny {
		return b
	}
	if b.Kind == KindAny {
		return a
	}
	if a.Kind == KindList && b.Kind == KindList {
		return TList(Unify(*a.Elem, *b.Elem))
	}
	if a.Kind == KindMap && b.Kind == KindMap {
		return TMap(Unify(*a.Elem, *b.Elem))
	}
	return TAny
}

// TypeError is one advisory diagnostic. Subject names the binding under
// complaint when there is one; Hint suggests a fix when one is obvious.
type TypeError struct {
	Message string
	Subject string
	Hint    string
}

func (e TypeError) Error() string { return e.Message }

// Prelude returns the types of the built-in bindings every program
// starts with.
func Prelude() map[string]Type {
	anyv := TAny
	return map[string]Type{
		"print":  TFunc([]Type{anyv}, TNull),
		"clock":  TFunc(nil, TNumber),
		"random": TFunc(nil, TNumber),
		"len":    TFunc([]Type{anyv}, TNumber),
		"keys":   TFunc([]Type{TMap(TAny)}, TList(TString)),
		"push":   TFunc([]Type{TList(TAny), anyv}, TList(TAny)),
		"pop":    TFunc([]Type{TList(TAny)}, TAny),
		"on":     TFunc([]Type{TString, anyv}, TNull),
		"emit":   TFunc([]Type{TString, anyv}, TNull),
		"host":   TFunc([]Type{TString, anyv}, TAny),
	}
}

// CheckProgram type-checks a parsed program. It returns the diagnostics
// in source order together with the final top-level type environment,
// so callers can carry bindings across runs. An empty diagnostic slice
// means the program is clean.
func CheckProgram(prog *Program) ([]TypeError, map[string]Type) {
	c := &checker{}
	env := Prelude()
	for _, s := range prog.Statements {
		c.checkStmt(s, env, nil)
	}
	return c.errs, env
}

type checker struct {
	errs []TypeError
}

func (c *checker) errorf(subject, hint, format string, args ...any) {
	c.errs = append(c.errs, TypeError{
		Message: fmt.Sprintf(format, args...),
		Subject: subject,
		Hint:    hint,
	})
}

// lowerType lowers a surface annotation to a semantic type. Record
// annotations document shape for the reader but check as "any".
func lowerType(te TypeExpr) Type {
	switch t := te.(type) {
	case *NumberType:
		return TNumber
	case *StringType:
		return TString
	case *BoolType:
		return TBool
	case *NullType:
		return TNull
	case *AnyType:
		return TAny
	case *ListType:
		return TList(lowerType(t.Elem))
	case *MapType:
		return TMap(lowerType(t.Value))
	case *FuncTypeExpr:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = lowerType(p)
		}
		return TFunc(params, lowerType(t.Ret))
	case *RecordType:
		return TAny
	}
	return TAny
}

// expectedRet is nil outside function bodies; inside, it is the declared
// return type, if any.
func (c *checker) checkStmt(s Stmt, env map[string]Type, expectedRet *Type) {
	switch st := s.(type) {
	case *LetStmt:
		it := c.infer(st.Init, env)
		if st.Type != nil {
			ann := lowerType(st.Type)
			if !IsCompatible(it, ann) {
				c.errorf(st.Name, "change the annotation or the initializer to match",
					"Type mismatch: variable '%s' initialized with %s but annotated as %s",
					st.Name, it, ann)
			}
			env[st.Name] = ann
		} else {
			env[st.Name] = it
		}
	case *ExprStmt:
		c.infer(st.X, env)
	case *BlockStmt:
		inner := maps.Clone(env)
		for _, s := range st.Statements {
			c.checkStmt(s, inner, expectedRet)
		}
	case *IfStmt:
		ct := c.infer(st.Cond, env)
		if !IsCompatible(ct, TBool) {
			c.errorf("", "", "If condition must be bool, got %s", ct)
		}
		c.checkStmt(st.Then, env, expectedRet)
		if st.Else != nil {
			c.checkStmt(st.Else, env, expectedRet)
		}
	case *WhileStmt:
		ct := c.infer(st.Cond, env)
		if !IsCompatible(ct, TBool) {
			c.errorf("", "", "While condition must be bool, got %s", ct)
		}
		c.checkStmt(st.Body, env, expectedRet)
	case *ForStmt:
		it := c.infer(st.Iter, env)
		if it.Kind != KindList {
			c.errorf(st.Name, "", "For expects list, got %s", it)
			return
		}
		inner := maps.Clone(env)
		inner[st.Name] = *it.Elem
		c.checkStmt(st.Body, inner, expectedRet)
	case *ReturnStmt:
		rt := TNull
		if st.Value != nil {
			rt = c.infer(st.Value, env)
		}
		if expectedRet != nil && !IsCompatible(rt, *expectedRet) {
			c.errorf("", "", "Return type %s does not match expected %s", rt, *expectedRet)
		}
	case *BreakStmt, *ContinueStmt:
		// nothing to check
	}
}

func (c *checker) infer(e Expr, env map[string]Type) Type {
	switch ex := e.(type) {
	case *NumberLit:
		return TNumber
	case *StringLit:
		return TString
	case *BoolLit:
		return TBool
	case *NullLit:
		return TNull
	case *VarExpr:
		if t, ok := env[ex.Name]; ok {
			return t
		}
		// unknown names are a runtime concern, not a type one
		return TAny
	case *AssignExpr:
		vt := c.infer(ex.Value, env)
		if declared, ok := env[ex.Name]; ok {
			if !IsCompatible(vt, declared) {
				c.errorf(ex.Name, "", "Cannot assign %s to variable '%s' of type %s",
					vt, ex.Name, declared)
			}
		}
		env[ex.Name] = vt
		return vt
	case *BinaryExpr:
		return c.inferBinary(ex, env)
	case *UnaryExpr:
		xt := c.infer(ex.X, env)
		if ex.Op == OpNeg {
			if xt.Equal(TNumber) {
				return TNumber
			}
			c.errorf("", "", "Unary - expects number, got %s", xt)
			return TAny
		}
		if xt.Equal(TBool) {
			return TBool
		}
		c.errorf("", "", "Unary ! expects bool, got %s", xt)
		return TAny
	case *CallExpr:
		return c.inferCall(ex, env)
	case *FnExpr:
		return c.inferFn(ex, env)
	case *ListExpr:
		elem := TAny
		for i, item := range ex.Items {
			it := c.infer(item, env)
			if i == 0 {
				elem = it
			} else {
				elem = Unify(elem, it)
			}
		}
		return TList(elem)
	case *MapExpr:
		val := TAny
		for i, entry := range ex.Entries {
			vt := c.infer(entry.Value, env)
			if i == 0 {
				val = vt
			} else {
				val = Unify(val, vt)
			}
		}
		return TMap(val)
	case *IndexExpr:
		tt := c.infer(ex.Target, env)
		it := c.infer(ex.Index, env)
		if tt.Kind == KindList && it.Kind == KindNumber {
			return *tt.Elem
		}
		if tt.Kind == KindMap && it.Kind == KindString {
			return *tt.Elem
		}
		c.errorf("", "", "Invalid index types: target %s indexed by %s", tt, it)
		return TAny
	case *FieldExpr:
		c.infer(ex.Target, env)
		// field access is dynamic; maps carry no per-key shape
		return TAny
	}
	return TAny
}

func (c *checker) inferBinary(ex *BinaryExpr, env map[string]Type) Type {
	lt := c.infer(ex.Left, env)
	rt := c.infer(ex.Right, env)
	switch ex.Op {
	case OpAdd:
		if lt.Equal(TNumber) && rt.Equal(TNumber) {
			return TNumber
		}
		if lt.Equal(TString) && rt.Equal(TString) {
			return TString
		}
		c.errorf("", "", "Invalid types for +: %s and %s", lt, rt)
		return TAny
	case OpSub, OpMul, OpDiv, OpMod:
		if lt.Equal(TNumber) && rt.Equal(TNumber) {
			return TNumber
		}
		c.errorf("", "", "Number operands required, got %s and %s", lt, rt)
		return TAny
	case OpLt, OpLe, OpGt, OpGe:
		if lt.Equal(TNumber) && rt.Equal(TNumber) {
			return TBool
		}
		c.errorf("", "", "Number operands required for comparison, got %s and %s", lt, rt)
		return TAny
	case OpEq, OpNe:
		// any two values may be compared; mismatched tags are just unequal
		return TBool
	case OpAnd, OpOr:
		if lt.Equal(TBool) && rt.Equal(TBool) {
			return TBool
		}
		c.errorf("", "", "Boolean operands required for logical operation, got %s and %s", lt, rt)
		return TAny
	}
	return TAny
}

func (c *checker) inferCall(ex *CallExpr, env map[string]Type) Type {
	ct := c.infer(ex.Callee, env)
	argTypes := make([]Type, len(ex.Args))
	for i, a := range ex.Args {
		argTypes[i] = c.infer(a, env)
	}
	if ct.Kind != KindFunc {
		// dynamic call; arguments go unchecked
		return TAny
	}
	if len(argTypes) != len(ct.Params) {
		c.errorf("", fmt.Sprintf("this function takes %d argument(s)", len(ct.Params)),
			"Function expects %d args, got %d", len(ct.Params), len(argTypes))
		return *ct.Ret
	}
	for i, at := range argTypes {
		if !IsCompatible(at, ct.Params[i]) {
			c.errorf("", "", "Argument %d type %s incompatible with parameter type %s",
				i+1, at, ct.Params[i])
		}
	}
	return *ct.Ret
}

func (c *checker) inferFn(ex *FnExpr, env map[string]Type) Type {
	params := make([]Type, len(ex.Params))
	inner := maps.Clone(env)
	for i, p := range ex.Params {
		pt := TAny
		if p.Type != nil {
			pt = lowerType(p.Type)
		}
		params[i] = pt
		inner[p.Name] = pt
	}
	ret := TAny
	var expected *Type
	if ex.Ret != nil {
		ret = lowerType(ex.Ret)
		expected = &ret
	}
	for _, s := range ex.Body {
		c.checkStmt(s, inner, expected)
	}
	return TFunc(params, ret)
}
