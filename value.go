package questicle

// ValueTag discriminates runtime values.
type ValueTag int

const (
	VTNull ValueTag = iota
	VTNumber
	VTBool
	VTString
	VTList
	VTMap
	VTFunc
)

// Value is a runtime value. Data holds float64, bool, string, []Value,
// map[string]Value or *Function depending on Tag; VTNull carries nil.
type Value struct {
	Tag  ValueTag
	Data any
}

// Null is the single null value.
var Null = Value{Tag: VTNull}

func Num(f float64) Value { return Value{Tag: VTNumber, Data: f} }
func Str(s string) Value { return Value{Tag: VTString, Data: s} }
func Bool(b bool) Value { return Value{Tag: VTBool, Data: b} }
func List(items []Value) Value { return Value{Tag: VTList, Data: items} }

func MapOf(m map[string]Value) Value {
	return Value{Tag: VTMap, Data: m}
}

func FuncOf(f *Function) Value { return Value{Tag: VTFunc, Data: f} }

func (v Value) AsNumber() float64 { return v.Data.(float64) }
func (v Value) AsBool() bool { return v.Data.(bool) }
func (v Value) AsString() string { return v.Data.(string) }
func (v Value) AsList() []Value { return v.Data.([]Value) }
func (v Value) AsMap() map[string]Value { return v.Data.(map[string]Value) }
func (v Value) AsFunc() *Function { return v.Data.(*Function) }

// Truthy reports the value's truth for conditions and logical operators:
// false, null and 0 are false, and so are empty strings, lists and maps.
func (v Value) Truthy() bool {
	switch v.Tag {
	case VTNull:
		return false
	case VTBool:
		return v.AsBool()
	case VTNumber:
		return v.AsNumber() != 0
	case VTString:
		return v.AsString() != ""
	case VTList:
		return len(v.AsList()) > 0
	case VTMap:
		return len(v.AsMap()) > 0
	}
	return true
}

// valueEq is the semantics of "==": only primitives of the same tag can
// be equal; lists, maps and functions never compare equal to anything.
func valueEq(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTNumber:
		return a.AsNumber() == b.AsNumber()
	case VTBool:
		return a.AsBool() == b.AsBool()
	case VTString:
		return a.AsString() == b.AsString()
	}
	return false
}

// NativeFn is a built-in implemented in Go. It receives the caller's
// environment so event handlers fired inside can see the caller's scope.
type NativeFn func(args []Value, env *Env) (Value, error)

// Function is a callable: either a script closure or a native built-in.
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
	Env    *Env     // captured defining environment, nil for natives
	Native NativeFn // non-nil marks a built-in
}
