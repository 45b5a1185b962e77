package questicle

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

// installStdlib defines the built-in functions in env, wiring the host
// bridge built-ins to the given host.
func installStdlib(env *Env, host HostAPI) {
	define := func(name string, fn NativeFn) {
		env.Define(name, FuncOf(&Function{Name: name, Native: fn}))
	}

	define("print", func(args []Value, _ *Env) (Value, error) {
		fmt.Fprintln(os.Stdout, joinArgs(args))
		return Null, nil
	})

	define("clock", func(_ []Value, _ *Env) (Value, error) {
		return Num(float64(time.Now().UnixNano()) / 1e9), nil
	})
	define("random", func(_ []Value, _ *Env) (Value, error) {
		return Num(rand.Float64()), nil
	})

	define("len", func(args []Value, _ *Env) (Value, error) {
		if len(args) == 0 {
			return Num(0), nil
		}
		switch args[0].Tag {
		case VTString:
			return Num(float64(utf8.RuneCountInString(args[0].AsString()))), nil
		case VTList:
			return Num(float64(len(args[0].AsList()))), nil
		case VTMap:
			return Num(float64(len(args[0].AsMap()))), nil
		}
		return Num(0), nil
	})

	define("keys", func(args []Value, _ *Env) (Value, error) {
		if len(args) == 0 || args[0].Tag != VTMap {
			return List(nil), nil
		}
		ks := sortedKeys(args[0].AsMap())
		items := make([]Value, len(ks))
		for i, k := range ks {
			items[i] = Str(k)
		}
		return List(items), nil
	})

	// push and pop are pure: both leave their argument untouched
	define("push", func(args []Value, _ *Env) (Value, error) {
		if len(args) < 2 || args[0].Tag != VTList {
			return Null, runtimeErrf("push expects (list, value)")
		}
		old := args[0].AsList()
		items := make([]Value, len(old), len(old)+1)
		copy(items, old)
		return List(append(items, args[1])), nil
	})
	define("pop", func(args []Value, _ *Env) (Value, error) {
		if len(args) == 0 || args[0].Tag != VTList {
			return Null, nil
		}
		items := args[0].AsList()
		if len(items) == 0 {
			return Null, nil
		}
		return items[len(items)-1], nil
	})

	define("host", func(args []Value, _ *Env) (Value, error) {
		if len(args) == 0 || args[0].Tag != VTString {
			return Null, runtimeErrf("host(op, payload)")
		}
		payload := Null
		if len(args) > 1 {
			payload = args[1]
		}
		return host.Call(args[0].AsString(), payload)
	})
	define("on", func(args []Value, _ *Env) (Value, error) {
		if len(args) < 2 || args[0].Tag != VTString || args[1].Tag != VTFunc {
			return Null, runtimeErrf("on(name, fn)")
		}
		host.On(args[0].AsString(), args[1].AsFunc())
		return Null, nil
	})
	define("emit", func(args []Value, env *Env) (Value, error) {
		if len(args) == 0 || args[0].Tag != VTString {
			return Null, runtimeErrf("emit(name, data)")
		}
		data := Null
		if len(args) > 1 {
			data = args[1]
		}
		return host.Emit(args[0].AsString(), data, env)
	})
}

func joinArgs(args []Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = displayString(a)
	}
	return strings.Join(parts, " ")
}
