// Command qk runs, checks and formats Questicle scripts, and hosts the
// interactive REPL.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/pkg/profile"

	"github.com/questicle/questicle"
)

const (
	exitParse   = 65
	exitRuntime = 70
)

var (
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

type cli struct {
	Run     runCmd     `cmd:"" help:"Run a script."`
	Check   checkCmd   `cmd:"" help:"Type-check a script and print diagnostics."`
	Fmt     fmtCmd     `cmd:"" help:"Format .qk files."`
	Repl    replCmd    `cmd:"" default:"1" help:"Start the interactive REPL (the default)."`
	Version versionCmd `cmd:"" help:"Print the version."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Name("qk"),
		kong.Description("The Questicle scripting language."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

// ----- run -----

type runCmd struct {
	Path    string `arg:"" type:"existingfile" help:"Script file to run."`
	Profile bool   `help:"Write a CPU profile to the current directory."`
}

func (c *runCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	if c.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	src := string(data)
	prog, err := questicle.NewParser(src).Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(questicle.WrapErrorWithName(err, src, c.Path).Error()))
		os.Exit(exitParse)
	}
	interp := questicle.NewInterpreter(questicle.NewHost())
	if _, _, err := interp.Eval(prog); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("runtime error: "+err.Error()))
		os.Exit(exitRuntime)
	}
	return nil
}

// ----- check -----

type checkCmd struct {
	Path string `arg:"" type:"existingfile" help:"Script file to check."`
}

func (c *checkCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	src := string(data)
	prog, err := questicle.NewParser(src).Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(questicle.WrapErrorWithName(err, src, c.Path).Error()))
		os.Exit(exitParse)
	}
	diags, _ := questicle.CheckProgram(prog)
	if len(diags) == 0 {
		fmt.Printf("%s: no type diagnostics\n", c.Path)
		return nil
	}
	for _, d := range diags {
		fmt.Println(warnStyle.Render("warning: " + d.Message))
		if d.Subject != "" {
			fmt.Println(dimStyle.Render("  subject: " + d.Subject))
		}
		if d.Hint != "" {
			fmt.Println(dimStyle.Render("  hint: " + d.Hint))
		}
	}
	// diagnostics are advisory; the script still runs
	return nil
}

// ----- fmt -----

type fmtCmd struct {
	Check bool     `help:"List files that need reformatting; exit 1 if any."`
	Stdin bool     `help:"Format stdin to stdout."`
	Paths []string `arg:"" optional:"" help:"Files or directories (default: current directory)."`
}

func (c *fmtCmd) Run() error {
	opts, err := questicle.LoadFormatterConfig(".")
	if err != nil {
		return err
	}
	if c.Stdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		fmt.Print(questicle.FormatSourceWithOptions(string(data), opts))
		return nil
	}
	files, err := collectScripts(c.Paths)
	if err != nil {
		return err
	}
	dirty := false
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		formatted := questicle.FormatSourceWithOptions(string(data), opts)
		if formatted == string(data) {
			continue
		}
		if c.Check {
			fmt.Printf("Reformat needed: %s\n", path)
			dirty = true
			continue
		}
		if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
			return err
		}
		fmt.Printf("Formatted: %s\n", path)
	}
	if dirty {
		os.Exit(1)
	}
	return nil
}

// collectScripts expands paths to .qk files, walking directories. With
// no paths the current directory is walked.
func collectScripts(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".qk") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// ----- repl -----

type replCmd struct{}

func (c *replCmd) Run() error {
	fmt.Printf("questicle %s (ctrl-d to exit)\n", questicle.Version)
	rl := liner.NewLiner()
	defer rl.Close()
	rl.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		rl.ReadHistory(f)
		f.Close()
	}

	interp := questicle.NewInterpreter(questicle.NewHost())
	var pending string
	for {
		prompt := ">> "
		if pending != "" {
			prompt = ".. "
		}
		input, err := rl.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			pending = ""
			continue
		}
		if err != nil {
			break
		}
		src := input
		if pending != "" {
			src = pending + "\n" + input
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		prog, perr := questicle.NewParser(src).Parse()
		if perr != nil {
			// an exhausted stream means the construct continues on the
			// next line; anything else is a real error
			var pe *questicle.ParseError
			if errors.As(perr, &pe) && pe.Kind == questicle.ParseEOF {
				pending = src
				continue
			}
			fmt.Println(errStyle.Render(questicle.WrapErrorWithSource(perr, src).Error()))
			pending = ""
			continue
		}
		pending = ""
		rl.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		v, ok, err := interp.Eval(prog)
		if err != nil {
			fmt.Println(errStyle.Render("runtime error: " + err.Error()))
			continue
		}
		if ok {
			fmt.Println(questicle.FormatValue(v))
		}
	}
	fmt.Println()

	if f, err := os.Create(histPath); err == nil {
		rl.WriteHistory(f)
		f.Close()
	}
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qk_history"
	}
	return filepath.Join(home, ".qk_history")
}

// ----- version -----

type versionCmd struct{}

func (c *versionCmd) Run() error {
	fmt.Println("qk " + questicle.Version)
	return nil
}
