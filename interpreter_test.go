package questicle

import (
	"math"
	"strings"
	"testing"
)

func evalSrc(t *testing.T, src string) (Value, bool) {
	t.Helper()
	prog := mustParse(t, src)
	v, ok, err := NewInterpreter(NewHost()).Eval(prog)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v, ok
}

func evalNum(t *testing.T, src string) float64 {
	t.Helper()
	v, ok := evalSrc(t, src)
	if !ok {
		t.Fatalf("eval %q produced no value", src)
	}
	if v.Tag != VTNumber {
		t.Fatalf("eval %q: got %s, want a number", src, FormatValue(v))
	}
	return v.AsNumber()
}

func evalErr(t *testing.T, src string) error {
	t.Helper()
	prog := mustParse(t, src)
	_, _, err := NewInterpreter(NewHost()).Eval(prog)
	if err == nil {
		t.Fatalf("eval %q: expected error", src)
	}
	return err
}

func Test_Eval_Arithmetic_Precedence(t *testing.T) {
	if got := evalNum(t, "let x: number = 1 + 2 * 3; x;"); got != 7 {
		t.Fatalf("got %v", got)
	}
}

func Test_Eval_Program_Result_Is_Last_Statement(t *testing.T) {
	if got := evalNum(t, "1; 2;"); got != 2 {
		t.Fatalf("got %v", got)
	}
	// a trailing let produces no value
	if _, ok := evalSrc(t, "1; let x: number = 2;"); ok {
		t.Fatal("trailing let should produce no value")
	}
}

func Test_Eval_Function_Body_First_Value_Wins(t *testing.T) {
	// inside a sequence the first value-producing statement ends it
	if got := evalNum(t, "fn f() { 1; 2; } f();"); got != 1 {
		t.Fatalf("got %v", got)
	}
}

func Test_Eval_Closure_Captures_By_Reference(t *testing.T) {
	if got := evalNum(t, "let x: number = 41; fn f() { x + 1 } f();"); got != 42 {
		t.Fatalf("got %v", got)
	}
	src := `
		let x: number = 41;
		fn f() { x + 1 }
		x = 1;
		f();
	`
	if got := evalNum(t, src); got != 2 {
		t.Fatalf("after mutation: got %v", got)
	}
}

func Test_Eval_Undefined_Variable(t *testing.T) {
	err := evalErr(t, "y;")
	if !strings.Contains(err.Error(), "Undefined variable 'y'") {
		t.Fatalf("message: %q", err.Error())
	}
}

func Test_Eval_Assign_Requires_Existing_Binding(t *testing.T) {
	err := evalErr(t, "q = 1;")
	if !strings.Contains(err.Error(), "Undefined variable 'q'") {
		t.Fatalf("message: %q", err.Error())
	}
}

func Test_Eval_Block_Scoping(t *testing.T) {
	// an inner let shadows; the outer binding survives the block
	src := `
		let x: number = 1;
		{ let x: number = 99; }
		x;
	`
	if got := evalNum(t, src); got != 1 {
		t.Fatalf("got %v", got)
	}
}

func Test_Eval_Assign_Reaches_Enclosing_Frame(t *testing.T) {
	src := `
		let x: number = 1;
		{ x = 5; let unused: number = 0; }
		x;
	`
	if got := evalNum(t, src); got != 5 {
		t.Fatalf("got %v", got)
	}
}

func Test_Eval_String_Concat_Permissive(t *testing.T) {
	v, _ := evalSrc(t, `"n=" + 2;`)
	if v.AsString() != "n=2" {
		t.Fatalf("got %q", v.AsString())
	}
	v, _ = evalSrc(t, `1 + " thing";`)
	if v.AsString() != "1 thing" {
		t.Fatalf("got %q", v.AsString())
	}
}

func Test_Eval_Plus_On_Mismatched_Aggregates_Errors(t *testing.T) {
	evalErr(t, "[1] + 2;")
}

func Test_Eval_Number_Op_Requires_Numbers(t *testing.T) {
	err := evalErr(t, `"a" - 1;`)
	if !strings.Contains(err.Error(), "number operands required") {
		t.Fatalf("message: %q", err.Error())
	}
}

func Test_Eval_Equality_Cross_Type_Is_False(t *testing.T) {
	v, _ := evalSrc(t, `1 == "1";`)
	if v.AsBool() {
		t.Fatal("cross-type equality should be false")
	}
	v, _ = evalSrc(t, "[1] == [1];")
	if v.AsBool() {
		t.Fatal("aggregates never compare equal")
	}
	v, _ = evalSrc(t, "null == null;")
	if !v.AsBool() {
		t.Fatal("null equals null")
	}
}

func Test_Eval_Logical_Ops_On_Truthiness(t *testing.T) {
	v, _ := evalSrc(t, `1 && "x";`)
	if !v.AsBool() {
		t.Fatal("1 && \"x\" should be true")
	}
	v, _ = evalSrc(t, `0 || "";`)
	if v.AsBool() {
		t.Fatal("0 || \"\" should be false")
	}
}

func Test_Eval_Truthiness(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{`if ("") 1; else 2;`, 2},
		{`if ("x") 1; else 2;`, 1},
		{"if (0) 1; else 2;", 2},
		{"if (null) 1; else 2;", 2},
		{"if ([]) 1; else 2;", 2},
		{"if ([0]) 1; else 2;", 1},
	}
	for _, c := range cases {
		if got := evalNum(t, c.src); got != c.want {
			t.Errorf("%q: got %v want %v", c.src, got, c.want)
		}
	}
}

func Test_Eval_Index_Silent_Nulls(t *testing.T) {
	null := func(src string) {
		t.Helper()
		v, _ := evalSrc(t, src)
		if v.Tag != VTNull {
			t.Errorf("%q: got %s, want null", src, FormatValue(v))
		}
	}
	null("[1, 2][5];")
	null("[1, 2][-1];")
	null(`[1, 2]["a"];`)
	null(`let m: map<number> = { a: 1 }; m["b"];`)
	null("let m: map<number> = { a: 1 }; m[0];")
	null(`1["a"];`)
	null("let m: map<number> = { a: 1 }; m.missing;")
}

func Test_Eval_Index_Number_Truncates(t *testing.T) {
	if got := evalNum(t, "[10, 20][1.5];"); got != 20 {
		t.Fatalf("got %v", got)
	}
}

func Test_Eval_While_Loop(t *testing.T) {
	src := `
		let n: number = 0;
		while (n < 5) { let step: number = n = n + 1; }
		n;
	`
	if got := evalNum(t, src); got != 5 {
		t.Fatalf("got %v", got)
	}
}

func Test_Eval_While_Body_Value_Ends_Loop(t *testing.T) {
	// a value-producing body statement returns out of the loop
	if got := evalNum(t, "let n: number = 0; while (n < 5) { n + 100; } "); got != 100 {
		t.Fatalf("got %v", got)
	}
}

func Test_Eval_For_Iterates_Fresh_Frames(t *testing.T) {
	src := `
		let total: number = 0;
		for (i in [1, 2, 3]) { let bump: number = total = total + i; }
		total;
	`
	if got := evalNum(t, src); got != 6 {
		t.Fatalf("got %v", got)
	}
}

func Test_Eval_For_Requires_List(t *testing.T) {
	err := evalErr(t, "for (i in 5) { }")
	if !strings.Contains(err.Error(), "for expects list") {
		t.Fatalf("message: %q", err.Error())
	}
}

func Test_Eval_Break_Continue_Are_Inert(t *testing.T) {
	src := `
		let count: number = 0;
		for (i in [1, 2]) { continue; }
		for (i in [1, 2]) { break; let bump: number = count = count + 1; }
		count;
	`
	if got := evalNum(t, src); got != 2 {
		t.Fatalf("got %v", got)
	}
}

func Test_Eval_Call_Binding(t *testing.T) {
	// missing arguments bind null, extras are ignored
	v, _ := evalSrc(t, "fn f(a, b) { b } f(1);")
	if v.Tag != VTNull {
		t.Fatalf("missing arg: got %s", FormatValue(v))
	}
	if got := evalNum(t, "fn f(a) { a } f(1, 2, 3);"); got != 1 {
		t.Fatalf("extra args: got %v", got)
	}
}

func Test_Eval_Call_Non_Function(t *testing.T) {
	err := evalErr(t, "let x: number = 1; x();")
	if !strings.Contains(err.Error(), "attempt to call non-function") {
		t.Fatalf("message: %q", err.Error())
	}
}

func Test_Eval_Recursion(t *testing.T) {
	src := `
		fn fib(n: number) -> number {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		fib(10);
	`
	if got := evalNum(t, src); got != 55 {
		t.Fatalf("got %v", got)
	}
}

func Test_Eval_Push_Pop_Value_Semantics(t *testing.T) {
	v, _ := evalSrc(t, "push([1, 2], 3);")
	if got := FormatValue(v); got != "[1, 2, 3]" {
		t.Fatalf("push: got %s", got)
	}
	src := `
		let xs: list<number> = [1, 2];
		let ys: list<number> = push(xs, 3);
		len(xs);
	`
	if got := evalNum(t, src); got != 2 {
		t.Fatalf("push mutated its argument: len %v", got)
	}
	if got := evalNum(t, "pop([7, 8]);"); got != 8 {
		t.Fatalf("pop: got %v", got)
	}
	v, _ = evalSrc(t, "pop([]);")
	if v.Tag != VTNull {
		t.Fatalf("pop empty: got %s", FormatValue(v))
	}
}

func Test_Eval_Len_And_Keys(t *testing.T) {
	if got := evalNum(t, `len("héllo");`); got != 5 {
		t.Fatalf("len counts runes: got %v", got)
	}
	v, _ := evalSrc(t, "keys({ b: 1, a: 2 });")
	if got := FormatValue(v); got != `["a", "b"]` {
		t.Fatalf("keys sorted: got %s", got)
	}
}

func Test_Eval_Host_Echo(t *testing.T) {
	v, _ := evalSrc(t, `host("ping", 7);`)
	if v.Tag != VTMap {
		t.Fatalf("got %s", FormatValue(v))
	}
	m := v.AsMap()
	if !m["ok"].AsBool() || m["op"].AsString() != "ping" || m["payload"].AsNumber() != 7 {
		t.Fatalf("echo: %s", FormatValue(v))
	}
}

func Test_Eval_Unary(t *testing.T) {
	if got := evalNum(t, "-(1 + 2);"); got != -3 {
		t.Fatalf("neg: got %v", got)
	}
	v, _ := evalSrc(t, "!0;")
	if !v.AsBool() {
		t.Fatal("!0 should be true")
	}
	err := evalErr(t, `-"x";`)
	if !strings.Contains(err.Error(), "Unary - expects number") {
		t.Fatalf("message: %q", err.Error())
	}
}

func Test_Eval_Division_By_Zero_Is_Infinite(t *testing.T) {
	if got := evalNum(t, "1 / 0;"); !math.IsInf(got, 1) {
		t.Fatalf("got %v", got)
	}
}
