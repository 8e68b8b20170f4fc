// Command baila is the Baila CLI and REPL entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/baila-lang/baila/pkg/config"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/evaluator"
	"github.com/baila-lang/baila/pkg/formatter"
	"github.com/baila-lang/baila/pkg/lexer"
	"github.com/baila-lang/baila/pkg/runtime"
)

const usage = `usage: baila <command> [options] [file]

commands:
  run    [-c config] [-n] [-T trace.jsonl] <file|->   run a program
  check  [-c config] <file|->                         report diagnostics only
  tokens [-a] <file|->                                print the token stream
  fmt    [-w] <file|->                                print canonical source
  trace  [-c config] [-j|-t] <file|->                 run and print trace events
  trace  -s [-j|-t] <trace.jsonl>                     summarize a recorded trace
  repl   [-c config] [-n]                             interactive session
  help                                                show this text

Use "-" as the file to read from standard input.
`

var (
	warn  = color.New(color.FgYellow).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(runtime.ExitUsage)
	}

	// getopt treats args[0] as the program name, so each command sees
	// itself there.
	args := os.Args[1:]
	switch cmd := args[0]; cmd {
	case "run":
		os.Exit(cmdRun(args))
	case "check":
		os.Exit(cmdCheck(args))
	case "tokens":
		os.Exit(cmdTokens(args))
	case "fmt":
		os.Exit(cmdFmt(args))
	case "trace":
		os.Exit(cmdTrace(args))
	case "repl":
		os.Exit(cmdRepl(args))
	case "help", "--help", "-h":
		fmt.Print(usage)
		os.Exit(runtime.ExitOK)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s", cmd, usage)
		os.Exit(runtime.ExitUsage)
	}
}

// loadConfig reads the configuration file at path, or the project/user
// files when path is empty, and applies the colour setting.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cwd, _ := os.Getwd()
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return nil, err
	}
	color.NoColor = !cfg.UseColor(isatty.IsTerminal(os.Stderr.Fd()))
	return cfg, nil
}

// runtimeOptions translates cfg into runtime options.
func runtimeOptions(cfg *config.Config) []runtime.Option {
	return []runtime.Option{
		runtime.WithTypeCheck(cfg.TypeCheck),
		runtime.WithLimits(evaluator.Limits{
			MaxCallDepth:  cfg.MaxCallDepth,
			MaxIterations: cfg.MaxIterations,
		}),
	}
}

// commandLine holds the options shared by the commands.
type commandLine struct {
	config  string
	noCheck bool
	write   bool
	all     bool
	summary bool
	record  string
	format  config.TraceFormat
	files   []string
}

func parseArgs(args []string, optstring string) (*commandLine, error) {
	opts, optind, err := getopt.Getopts(args, optstring)
	if err != nil {
		return nil, err
	}
	cl := &commandLine{files: args[optind:]}
	for _, opt := range opts {
		switch opt.Option {
		case 'c':
			cl.config = opt.Value
		case 'n':
			cl.noCheck = true
		case 'w':
			cl.write = true
		case 'a':
			cl.all = true
		case 's':
			cl.summary = true
		case 'T':
			cl.record = opt.Value
		case 'j':
			cl.format = config.TraceJSON
		case 't':
			cl.format = config.TraceText
		}
	}
	return cl, nil
}

// fileArg returns the single file operand or reports a usage error.
func (cl *commandLine) fileArg(cmd string) (string, bool) {
	if len(cl.files) != 1 {
		fmt.Fprintf(os.Stderr, "baila %s: expected exactly one file\n\n%s", cmd, usage)
		return "", false
	}
	return cl.files[0], true
}

func usageError(cmd string, err error) int {
	fmt.Fprintf(os.Stderr, "baila %s: %s\n", cmd, err)
	return runtime.ExitUsage
}

func cmdRun(args []string) int {
	cl, err := parseArgs(args, "c:nT:")
	if err != nil {
		return usageError("run", err)
	}
	file, ok := cl.fileArg("run")
	if !ok {
		return runtime.ExitUsage
	}
	cfg, err := loadConfig(cl.config)
	if err != nil {
		return usageError("run", err)
	}
	if cl.noCheck {
		cfg.TypeCheck = false
	}

	source, filename, code := readSource(file)
	if code != runtime.ExitOK {
		return code
	}

	opts := runtimeOptions(cfg)
	switch {
	case cl.record != "":
		f, err := os.Create(cl.record)
		if err != nil {
			return usageError("run", err)
		}
		defer f.Close()
		opts = append(opts, runtime.WithTrace(traceWriter(f, config.TraceJSON)))
	case cfg.Trace != config.TraceOff:
		opts = append(opts, runtime.WithTrace(traceWriter(os.Stderr, cfg.Trace)))
	}
	return execute(runtime.New(opts...), source, filename)
}

// execute compiles and runs source, reporting diagnostics on stderr.
func execute(rt *runtime.Runtime, source, filename string) int {
	prog, err := rt.Compile(source, filename)
	if err != nil {
		return report(err, source)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if _, err := prog.Execute(ctx); err != nil {
		return report(err, source)
	}
	return runtime.ExitOK
}

// report prints the diagnostics carried by err and returns its exit code.
func report(err error, source string) int {
	fmt.Fprintln(os.Stderr, diagnostics.RenderAll(diagnostics.FromError(err), source))
	return runtime.ExitCode(err)
}

func cmdCheck(args []string) int {
	cl, err := parseArgs(args, "c:")
	if err != nil {
		return usageError("check", err)
	}
	file, ok := cl.fileArg("check")
	if !ok {
		return runtime.ExitUsage
	}
	cfg, err := loadConfig(cl.config)
	if err != nil {
		return usageError("check", err)
	}
	source, filename, code := readSource(file)
	if code != runtime.ExitOK {
		return code
	}

	diags := runtime.New(runtimeOptions(cfg)...).Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.RenderAll(diags, source))
		return runtime.ExitDiagnostics
	}
	fmt.Println("No errors found.")
	return runtime.ExitOK
}

func cmdTokens(args []string) int {
	cl, err := parseArgs(args, "a")
	if err != nil {
		return usageError("tokens", err)
	}
	file, ok := cl.fileArg("tokens")
	if !ok {
		return runtime.ExitUsage
	}
	if _, err := loadConfig(""); err != nil {
		return usageError("tokens", err)
	}
	source, filename, code := readSource(file)
	if code != runtime.ExitOK {
		return code
	}

	mode := lexer.Regular
	if cl.all {
		mode = lexer.Highlighting
	}
	toks, diags := runtime.New().Tokenize(source, filename, mode)
	for _, tok := range toks {
		fmt.Printf("%s %s\n", faint(tok.Span.String()), tok)
	}
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.RenderAll(diags, source))
		return runtime.ExitDiagnostics
	}
	return runtime.ExitOK
}

func cmdFmt(args []string) int {
	cl, err := parseArgs(args, "w")
	if err != nil {
		return usageError("fmt", err)
	}
	file, ok := cl.fileArg("fmt")
	if !ok {
		return runtime.ExitUsage
	}
	if cl.write && file == "-" {
		return usageError("fmt", fmt.Errorf("-w cannot be used with standard input"))
	}
	if _, err := loadConfig(""); err != nil {
		return usageError("fmt", err)
	}
	source, filename, code := readSource(file)
	if code != runtime.ExitOK {
		return code
	}

	formatted, err := runtime.New().Format(source, filename)
	if err != nil {
		return report(err, source)
	}
	if formatter.HasComments(source) {
		fmt.Fprintln(os.Stderr, warn("warning: comments are not preserved by the formatter"))
	}

	if cl.write {
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing file: %s\n", err)
			return runtime.ExitUsage
		}
		return runtime.ExitOK
	}
	fmt.Print(formatted)
	return runtime.ExitOK
}

// readSource reads file, or standard input for "-". It returns the source,
// the name used in diagnostics and an exit code.
func readSource(file string) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading stdin: %s\n", err)
			return "", "", runtime.ExitUsage
		}
		return string(data), "<stdin>", runtime.ExitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read file: %s\n", strconv.Quote(file))
		return "", "", runtime.ExitUsage
	}
	return string(source), file, runtime.ExitOK
}
