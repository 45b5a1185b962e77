package questicle

import (
	"strings"
	"testing"
)

func diagnostics(t *testing.T, src string) []TypeError {
	t.Helper()
	prog := mustParse(t, src)
	diags, _ := CheckProgram(prog)
	return diags
}

func oneDiag(t *testing.T, src, wantSub string) TypeError {
	t.Helper()
	diags := diagnostics(t, src)
	if len(diags) != 1 {
		t.Fatalf("diagnostics for %q: got %d, want 1: %v", src, len(diags), diags)
	}
	if !strings.Contains(diags[0].Message, wantSub) {
		t.Fatalf("message %q does not contain %q", diags[0].Message, wantSub)
	}
	return diags[0]
}

func noDiags(t *testing.T, src string) {
	t.Helper()
	if diags := diagnostics(t, src); len(diags) != 0 {
		t.Fatalf("diagnostics for %q: %v", src, diags)
	}
}

func Test_Check_Compatibility_Lattice(t *testing.T) {
	samples := []Type{
		TNumber, TString, TBool, TNull, TAny,
		TList(TNumber), TMap(TString), TList(TList(TAny)),
		TFunc([]Type{TNumber}, TBool),
	}
	for _, ty := range samples {
		if !IsCompatible(ty, TAny) {
			t.Errorf("IsCompatible(%s, any) = false", ty)
		}
		if !IsCompatible(TAny, ty) {
			t.Errorf("IsCompatible(any, %s) = false", ty)
		}
		if !IsCompatible(TNull, ty) {
			t.Errorf("IsCompatible(null, %s) = false", ty)
		}
		if !IsCompatible(ty, ty) {
			t.Errorf("IsCompatible(%s, %s) = false", ty, ty)
		}
	}
	if IsCompatible(TNumber, TString) {
		t.Error("number should not flow into string")
	}
	if got := IsCompatible(TList(TNumber), TList(TString)); got {
		t.Error("list compatibility should follow the element")
	}
	if !IsCompatible(TList(TNumber), TList(TAny)) {
		t.Error("list<number> should flow into list<any>")
	}
}

func Test_Check_Function_Types_Compatible_Only_When_Equal(t *testing.T) {
	f := TFunc([]Type{TNumber}, TNull)
	if !IsCompatible(f, TFunc([]Type{TNumber}, TNull)) {
		t.Error("identical function types should be compatible")
	}
	if IsCompatible(f, TFunc([]Type{TAny}, TNull)) {
		t.Error("fn(number) -> null should not flow into fn(any) -> null")
	}
	if IsCompatible(TFunc([]Type{TAny}, TNull), f) {
		t.Error("fn(any) -> null should not flow into fn(number) -> null")
	}
	if IsCompatible(f, TFunc([]Type{TNumber}, TNumber)) {
		t.Error("function types differing in return should be incompatible")
	}
}

func Test_Check_Function_Annotation_Mismatch(t *testing.T) {
	oneDiag(t, "let f: fn(number) -> null = fn (x: any) -> null { return; };",
		"Type mismatch: variable 'f' initialized with fn(any) -> null but annotated as fn(number) -> null")
	noDiags(t, "let f: fn(number) -> null = fn (x: number) -> null { return; };")
}

func Test_Check_Unify(t *testing.T) {
	cases := []struct {
		a, b, want Type
	}{
		{TNumber, TNumber, TNumber},
		{TAny, TString, TString},
		{TString, TAny, TString},
		{TNumber, TString, TAny},
		{TList(TNumber), TList(TNumber), TList(TNumber)},
		{TList(TNumber), TList(TAny), TList(TNumber)},
		{TMap(TNumber), TMap(TString), TMap(TAny)},
		{TList(TNumber), TMap(TNumber), TAny},
	}
	for _, c := range cases {
		if got := Unify(c.a, c.b); !got.Equal(c.want) {
			t.Errorf("Unify(%s, %s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}

func Test_Check_Type_Strings(t *testing.T) {
	ty := TFunc([]Type{TNumber, TList(TString)}, TMap(TAny))
	if got, want := ty.String(), "fn(number, list<string>) -> map<any>"; got != want {
		t.Fatalf("String: got %q want %q", got, want)
	}
}

func Test_Check_Subtraction_Needs_Numbers(t *testing.T) {
	d := oneDiag(t, `let a: number = "x" - 1;`, "Number operands required")
	if !strings.Contains(d.Message, "got string and number") {
		t.Fatalf("message: %q", d.Message)
	}
}

func Test_Check_Annotation_Mismatch(t *testing.T) {
	d := oneDiag(t, "let s: string = 5;",
		"Type mismatch: variable 's' initialized with number but annotated as string")
	if d.Subject != "s" {
		t.Fatalf("subject: %q", d.Subject)
	}
	if d.Hint == "" {
		t.Fatal("expected a hint")
	}
}

func Test_Check_Null_Flows_Anywhere(t *testing.T) {
	noDiags(t, "let n: number = null;")
}

func Test_Check_Annotation_Wins_Over_Inference(t *testing.T) {
	// the annotation, not the inferred type, is what later uses see
	oneDiag(t, "let a: number = 1; let b: string = a + \"x\";", "Invalid types for +")
}

func Test_Check_Equality_Always_Bool(t *testing.T) {
	noDiags(t, `let b: bool = 1 == "a";`)
}

func Test_Check_Mixed_Plus_Rejected(t *testing.T) {
	oneDiag(t, `let a: any = "x" + 1;`, "Invalid types for +: string and number")
}

func Test_Check_Comparison_Message(t *testing.T) {
	oneDiag(t, `let b: any = "a" < 1;`, "Number operands required for comparison")
}

func Test_Check_Logical_Operands(t *testing.T) {
	oneDiag(t, "let b: any = 1 && true;", "Boolean operands required for logical operation")
}

func Test_Check_Call_Arity(t *testing.T) {
	d := oneDiag(t,
		"fn f(a: number) -> number { return a; } f(1, 2);",
		"Function expects 1 args, got 2")
	if d.Hint == "" {
		t.Fatal("expected a hint")
	}
}

func Test_Check_Call_Argument_Type(t *testing.T) {
	oneDiag(t,
		`fn f(a: number) -> number { return a; } f("x");`,
		"Argument 1 type string incompatible with parameter type number")
}

func Test_Check_Dynamic_Call_Unchecked(t *testing.T) {
	noDiags(t, "let v: any = 1; v(1, 2, 3);")
}

func Test_Check_Field_Access_Is_Any(t *testing.T) {
	noDiags(t, "let m: map<number> = { a: 1 }; let z: string = m.a;")
}

func Test_Check_Index_Types(t *testing.T) {
	noDiags(t, "let xs: list<number> = [1]; let x: number = xs[0];")
	noDiags(t, `let m: map<number> = { a: 1 }; let x: number = m["a"];`)
	oneDiag(t, `let xs: list<number> = [1]; xs["a"];`,
		"Invalid index types: target list<number> indexed by string")
}

func Test_Check_Condition_Must_Be_Bool(t *testing.T) {
	oneDiag(t, "if (1) { }", "If condition must be bool, got number")
	oneDiag(t, "while (1) { }", "While condition must be bool, got number")
}

func Test_Check_For_Expects_List(t *testing.T) {
	d := oneDiag(t, "for (i in 5) { }", "For expects list, got number")
	if d.Subject != "i" {
		t.Fatalf("subject: %q", d.Subject)
	}
}

func Test_Check_For_Binds_Element_Type(t *testing.T) {
	oneDiag(t, `for (i in [1, 2]) { let s: string = i; }`,
		"Type mismatch: variable 's' initialized with number but annotated as string")
}

func Test_Check_Assign_Mismatch(t *testing.T) {
	d := oneDiag(t, `let x: number = 1; x = "s";`,
		"Cannot assign string to variable 'x' of type number")
	if d.Subject != "x" {
		t.Fatalf("subject: %q", d.Subject)
	}
}

func Test_Check_Return_Type(t *testing.T) {
	oneDiag(t, `fn f() -> number { return "s"; }`,
		"Return type string does not match expected number")
	// bare return yields null, and null flows into every declared type
	noDiags(t, "fn f() -> number { return; }")
}

func Test_Check_Bare_Return_Against_Null_Ok(t *testing.T) {
	noDiags(t, "fn f() -> null { return; }")
}

func Test_Check_Unknown_Var_Is_Any(t *testing.T) {
	// unknown names are a runtime concern; the checker stays silent
	noDiags(t, "let x: number = mystery;")
}

func Test_Check_Unary_Rules(t *testing.T) {
	oneDiag(t, `let a: any = -"x";`, "Unary - expects number, got string")
	oneDiag(t, "let a: any = !1;", "Unary ! expects bool, got number")
	noDiags(t, "let a: number = -1; let b: bool = !true;")
}

func Test_Check_Record_Annotation_Lowers_To_Any(t *testing.T) {
	noDiags(t, "let r: record{x: number} = 5;")
}

func Test_Check_Returns_Final_Environment(t *testing.T) {
	prog := mustParse(t, `let x: number = 1; fn f(a: number) -> bool { return a == x; }`)
	diags, env := CheckProgram(prog)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	if got, ok := env["x"]; !ok || !got.Equal(TNumber) {
		t.Fatalf("env[x] = %s, %v", got, ok)
	}
	want := TFunc([]Type{TNumber}, TBool)
	if got, ok := env["f"]; !ok || !got.Equal(want) {
		t.Fatalf("env[f] = %s, %v", got, ok)
	}
	if _, ok := env["print"]; !ok {
		t.Fatal("prelude bindings should survive in the final environment")
	}
}

func Test_Check_Accumulates_All_Errors(t *testing.T) {
	diags := diagnostics(t, `let a: string = 1; let b: number = "x"; 1 && 2;`)
	if len(diags) != 3 {
		t.Fatalf("diagnostics: %d (%v)", len(diags), diags)
	}
}
