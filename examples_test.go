package questicle

import (
	"os"
	"path/filepath"
	"testing"
)

// The scripts under testdata/ double as documentation: each one must
// parse, check clean, run without error, and already be a fixed point
// of the formatter.
func Test_Example_Scripts(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.qk"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no example scripts found")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			src := string(data)

			prog, err := NewParser(src).Parse()
			if err != nil {
				t.Fatalf("parse: %v", WrapErrorWithName(err, src, path))
			}
			if diags, _ := CheckProgram(prog); len(diags) != 0 {
				t.Fatalf("diagnostics: %+v", diags)
			}
			if _, _, err := NewInterpreter(NewHost()).Eval(prog); err != nil {
				t.Fatalf("eval: %v", err)
			}

			once := FormatSource(src)
			if once != src {
				t.Errorf("script is not formatter-clean:\n%s", once)
			}
			if twice := FormatSource(once); twice != once {
				t.Errorf("formatter is not idempotent on %s", path)
			}
		})
	}
}
