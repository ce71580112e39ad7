package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/superloach/egg/pkg/config"
	"github.com/superloach/egg/pkg/egg"
)

const Version = "0.1.0"

const HelpMessage = `
Egg is a tiny language made of applications and special forms.
	egg v%s

By default, egg interprets from stdin.
	egg < main.egg
Run Egg programs from source files by passing them to the interpreter.
	egg main.egg other.egg
Start an interactive repl with -repl.
	egg -repl
	> ___
Run from the command line with -eval.
	egg -eval "do(define(x, 21), print(*(x, 2)))"
Print the syntax tree of a program instead of running it with -dump-tree.
	egg -dump-tree -eval "+(1, 2)"

Settings are read from the nearest egg.toml, searching upwards from the
working directory, unless -config names a file.

`

func main() {
	flag.Usage = func() {
		fmt.Printf(HelpMessage, Version)
		flag.PrintDefaults()
	}

	configPath := flag.String("config", "", "Read settings from this file instead of the nearest egg.toml")
	maxSteps := flag.Int("max-steps", -1, "Abort programs after this many evaluation steps, 0 for no limit")

	// cli arguments
	verbose := flag.Bool("verbose", false, "Log all interpreter debug information")
	debugParser := flag.Bool("debug-parse", false, "Log parser output")
	dump := flag.Bool("dump", false, "Dump top-level scope after eval")
	dumpTree := flag.Bool("dump-tree", false, "Print the syntax tree as YAML instead of running")
	noColor := flag.Bool("no-color", false, "Never colour output")

	version := flag.Bool("version", false, "Print version string and exit")
	help := flag.Bool("help", false, "Print help message and exit")

	repl := flag.Bool("repl", false, "Run as an interactive repl")
	eval := flag.String("eval", "", "Evaluate argument as an Egg program")

	flag.Parse()

	// collect all other non-parsed arguments from the CLI as files to be run
	files := flag.Args()

	// if asked for version, disregard everything else
	if *version {
		fmt.Printf("egg v%s\n", Version)
		os.Exit(0)
	} else if *help {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		egg.LogErrf(egg.ErrSystem, "could not load configuration:\n\t-> %s", err)
	}

	verbosity := cfg.Log.Verbosity
	if *verbose {
		verbosity = 2
	}
	egg.ConfigureLogging(verbosity, cfg.Log.File)

	switch {
	case *noColor || cfg.Log.Color == "never":
		egg.SetColor(false)
	case cfg.Log.Color == "always":
		egg.SetColor(true)
	}

	// execution environment
	eng := &egg.Engine{
		Stdout:     os.Stdout,
		FatalError: cfg.Engine.FatalError,
		Debug: egg.DebugConfig{
			Parse: *debugParser || *verbose || cfg.Debug.Parse,
			Dump:  *dump || *verbose || cfg.Debug.Dump,
		},
		Limits: egg.LimitsConfig{
			MaxSteps: cfg.Engine.MaxSteps,
			MaxDepth: cfg.Engine.MaxDepth,
		},
	}
	if *maxSteps >= 0 {
		eng.Limits.MaxSteps = *maxSteps
	}

	if *dumpTree {
		os.Exit(printTrees(*eval, files))
	}

	if *repl {
		runRepl(eng, cfg)
	} else if *eval != "" {
		ctx := eng.CreateContext()
		eng.FatalError = true

		ctx.Exec(strings.NewReader(*eval))
	} else if len(files) > 0 {
		status := 0

		// read from file
		for _, filePath := range files {
			// execution context is one-per-file
			ctx := eng.CreateContext()

			// expand out ~ for $HOME, which is not done by shells
			if strings.HasPrefix(filePath, "~"+string(os.PathSeparator)) {
				filePath = filepath.Join(os.Getenv("HOME"), filePath[2:])
			}

			if _, err := ctx.ExecPath(filePath); err != nil {
				status = egg.Reason(err)
			}
		}

		os.Exit(status)
	} else {
		ctx := eng.CreateContext()
		eng.FatalError = true

		ctx.Exec(os.Stdin)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return config.Default(), nil
	}
	return config.FindAndLoad(wd)
}

// printTrees prints the YAML syntax tree of each program given on the
// command line, or of stdin, and returns the exit status.
func printTrees(eval string, files []string) int {
	type source struct {
		name string
		text string
	}

	var sources []source
	switch {
	case eval != "":
		sources = append(sources, source{"-eval", eval})
	case len(files) > 0:
		for _, filePath := range files {
			data, err := os.ReadFile(filePath)
			if err != nil {
				egg.LogSafeErr(egg.ErrSystem, fmt.Sprintf("could not read %s:\n\t-> %s", filePath, err))
				return egg.ErrSystem
			}
			sources = append(sources, source{filePath, string(data)})
		}
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			egg.LogSafeErr(egg.ErrSystem, fmt.Sprintf("could not read stdin:\n\t-> %s", err))
			return egg.ErrSystem
		}
		sources = append(sources, source{"stdin", string(data)})
	}

	for _, src := range sources {
		node, err := egg.Parse(src.text)
		if err != nil {
			egg.LogSafeErr(egg.Reason(err), err.Error()+" in "+src.name)
			return egg.Reason(err)
		}

		out, err := egg.MarshalTree(node)
		if err != nil {
			egg.LogSafeErr(egg.ErrSystem, err.Error())
			return egg.ErrSystem
		}

		if len(sources) > 1 {
			fmt.Printf("# %s\n", src.name)
		}
		fmt.Print(string(out))
	}

	return 0
}

func runRepl(eng *egg.Engine, cfg *config.Config) {
	ctx := eng.CreateContext()

	// add repl-specific builtins
	ctx.LoadFunc("clear", 0, func(ctx *egg.Context, in []egg.Value) (egg.Value, error) {
		fmt.Printf("\x1b[2J\x1b[H")
		return egg.BooleanValue(false), nil
	})
	ctx.LoadFunc("dump", 0, func(ctx *egg.Context, in []egg.Value) (egg.Value, error) {
		ctx.Dump()
		return egg.BooleanValue(false), nil
	})

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := cfg.HistoryPath(home)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}

		defer func() {
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	for {
		text, ok := readExpression(ln, cfg.Repl.Prompt, cfg.Repl.Continuation)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(text, "\n", " "))

		// Ctrl-C while a program runs abandons that program, not the repl
		cx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

		// we don't really care if expressions fail to eval
		// at the top level, user will see regardless, so drop err
		val, _ := ctx.ExecContext(cx, strings.NewReader(text))
		stop()

		if val != nil {
			egg.LogInteractive(val.String())
		}
	}
}

// readExpression reads lines until they form a complete expression, or
// until the parser finds an error that more input could not fix. It
// returns false once input is exhausted.
func readExpression(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}

		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		} else if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		} else if err != nil {
			egg.LogSafeErr(egg.ErrSystem, fmt.Sprintf("unexpected end of input:\n\t-> %s", err))
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, true
		}
		if _, err := egg.Parse(src); errors.Is(err, egg.ErrUnexpectedEnd) {
			continue
		}
		return src, true
	}
}
