package questicle

import (
	"os"
	"path/filepath"
	"testing"
)

func fmtEq(t *testing.T, src, want string) {
	t.Helper()
	if got := FormatSource(src); got != want {
		t.Errorf("format %q:\n got %q\nwant %q", src, got, want)
	}
}

func Test_Format_Spacing(t *testing.T) {
	fmtEq(t, "let a:number=1+2*3;", "let a: number = 1 + 2 * 3;\n")
	fmtEq(t, "let s:string=\"a\"+\"b\";", "let s: string = \"a\" + \"b\";\n")
	fmtEq(t, "f( 1 ,2, 3 );", "f(1, 2, 3);\n")
	fmtEq(t, "xs [ 0 ];", "xs[0];\n")
	fmtEq(t, "f(x)[0].y;", "f(x)[0].y;\n")
	fmtEq(t, "a . b . c;", "a.b.c;\n")
}

func Test_Format_Keyword_Paren_Gets_Space(t *testing.T) {
	fmtEq(t, "if(x)y;else z;", "if (x) y; else z;\n")
	fmtEq(t, "while(x)y;", "while (x) y;\n")
	fmtEq(t, "return(1);", "return (1);\n")
}

func Test_Format_Unary_Operators(t *testing.T) {
	fmtEq(t, "- 1;", "-1;\n")
	fmtEq(t, "1- -2;", "1 - -2;\n")
	fmtEq(t, "! done;", "!done;\n")
	fmtEq(t, "f(- 1, ! x);", "f(-1, !x);\n")
}

func Test_Format_Generic_Types_Unspaced(t *testing.T) {
	fmtEq(t, "let xs:list < number > =[];", "let xs: list<number> = [];\n")
	fmtEq(t, "let m:map < list < number > > ={};", "let m: map<list<number>> = {};\n")
}

func Test_Format_Comparison_Keeps_Spaces(t *testing.T) {
	fmtEq(t, "a<b;", "a < b;\n")
	fmtEq(t, "a>=b;", "a >= b;\n")
}

func Test_Format_Inline_Map_Stays_Inline(t *testing.T) {
	fmtEq(t, "let m:map<number>={a:1,b:2};", "let m: map<number> = { a: 1, b: 2 };\n")
	fmtEq(t, "let m:map<number>={};", "let m: map<number> = {};\n")
}

func Test_Format_Map_With_Newline_Becomes_Block(t *testing.T) {
	src := "let m: map<number> = {a: 1,\nb: 2};\n"
	want := "let m: map<number> = {\n  a: 1,\n  b: 2\n};\n"
	fmtEq(t, src, want)
}

func Test_Format_Block_Layout(t *testing.T) {
	// single-line braces stay inline; an interior newline forces block layout
	fmtEq(t, "fn f(x) {return x;}", "fn f(x) { return x; }\n")
	src := "fn f(x) {\nreturn x;\n}"
	want := "fn f(x) {\n  return x;\n}\n"
	fmtEq(t, src, want)
	src = "if (a) {\nb;\n} else {\nc;\n}"
	want = "if (a) {\n  b;\n} else {\n  c;\n}\n"
	fmtEq(t, src, want)
}

func Test_Format_Nested_Indent(t *testing.T) {
	src := "fn f() {\nif (x) {\ny;\n}\n}"
	want := "fn f() {\n  if (x) {\n    y;\n  }\n}\n"
	fmtEq(t, src, want)
}

func Test_Format_Preserves_Comments(t *testing.T) {
	src := "// top\nlet a: number = 1; // trailing\n/* block */\nlet b: number = 2;\n"
	want := "// top\nlet a: number = 1; // trailing\n/* block */\nlet b: number = 2;\n"
	fmtEq(t, src, want)
}

func Test_Format_Mid_Line_Block_Comment_Stays_Inline(t *testing.T) {
	fmtEq(t,
		"let x: number = 1; /* mid */ let y: number = 2;",
		"let x: number = 1; /* mid */ let y: number = 2;\n")
}

func Test_Format_Caps_Blank_Lines(t *testing.T) {
	src := "let a: number = 1;\n\n\n\n\n\nlet b: number = 2;\n"
	want := "let a: number = 1;\n\n\nlet b: number = 2;\n"
	fmtEq(t, src, want)
	got := FormatSourceWithOptions(src, FormatterOptions{IndentWidth: 2, MaxBlankLines: 0})
	if got != "let a: number = 1;\nlet b: number = 2;\n" {
		t.Errorf("max_blank_lines 0: got %q", got)
	}
}

func Test_Format_Trims_Edges(t *testing.T) {
	fmtEq(t, "\n\n1;\n\n\n", "1;\n")
	fmtEq(t, "", "")
	fmtEq(t, "   \n\t\n", "")
}

func Test_Format_Indent_Width_Option(t *testing.T) {
	got := FormatSourceWithOptions("fn f() {\nx;\n}", FormatterOptions{IndentWidth: 4, MaxBlankLines: 2})
	if got != "fn f() {\n    x;\n}\n" {
		t.Errorf("got %q", got)
	}
}

func Test_Format_Idempotent(t *testing.T) {
	sources := []string{
		"let a:number=1+2*3;",
		"fn greet(name: string) -> string {\n  return \"hi \" + name;\n}\ngreet(\"qk\");\n",
		"// header\nlet m: map<number> = {a: 1,\n// note\nb: 2};\n",
		"let xs: list<number> = [1, 2, 3];\nfor (i in xs) {\n\n\n  let tick: number = i;\n}\n",
		"while (n < 10) { let bump: number = n = n + 1; }",
		"if (x) { y; /* why */ } else { z; }\n",
		"let neg: number = -f(-1)[0];",
		"on(\"hit\", fn(data) {\n  print(data);\n});\n",
	}
	for _, src := range sources {
		once := FormatSource(src)
		twice := FormatSource(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\n once %q\ntwice %q", src, once, twice)
		}
	}
}

func Test_Format_Config_File(t *testing.T) {
	dir := t.TempDir()

	opts, err := LoadFormatterConfig(dir)
	if err != nil {
		t.Fatalf("missing config: %v", err)
	}
	if opts != DefaultFormatterOptions() {
		t.Fatalf("missing config should yield defaults, got %+v", opts)
	}

	path := filepath.Join(dir, FormatterConfigName)
	if err := os.WriteFile(path, []byte("indent: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err = LoadFormatterConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if opts.IndentWidth != 4 || opts.MaxBlankLines != 2 {
		t.Fatalf("partial config: got %+v", opts)
	}

	if err := os.WriteFile(path, []byte("indent: 0\nmax_blank_lines: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err = LoadFormatterConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if opts.IndentWidth != 2 {
		t.Fatalf("indent 0 should clamp to default, got %d", opts.IndentWidth)
	}
	if opts.MaxBlankLines != 0 {
		t.Fatalf("explicit zero blank lines should stick, got %d", opts.MaxBlankLines)
	}
}
