package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/baila-lang/baila/pkg/config"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/runtime"
	"github.com/baila-lang/baila/pkg/value"
)

const (
	banner     = "Baila REPL. Type :help for commands, :quit to exit."
	promptCont = "... "
	replHelp   = `:help     show this text
:help f   list the overloads of f or the type of a variable
:quit     leave the session
:reset    forget every definition
:names    list session definitions
Multi-line input continues until blocks and strings are closed;
an empty line submits what was typed so far.`
)

var result = color.New(color.FgGreen).SprintFunc()

func cmdRepl(args []string) int {
	cl, err := parseArgs(args, "c:n")
	if err != nil {
		return usageError("repl", err)
	}
	cfg, err := loadConfig(cl.config)
	if err != nil {
		return usageError("repl", err)
	}
	if cl.noCheck {
		cfg.TypeCheck = false
	}

	fmt.Println(banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	loadHistory(ln, cfg)
	defer saveHistory(ln, cfg)

	session := runtime.New(runtimeOptions(cfg)...).NewSession()
	for {
		input, ok := readInput(ln, session, cfg.Prompt)
		if !ok {
			fmt.Println()
			return runtime.ExitOK
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := replCommand(session, trimmed); quit {
				return runtime.ExitOK
			}
			continue
		}
		evalInput(session, input)
	}
}

// replCommand handles a colon command and reports whether to quit.
func replCommand(session *runtime.Session, cmd string) bool {
	if name, ok := strings.CutPrefix(cmd, ":help "); ok {
		name = strings.TrimSpace(name)
		if desc, found := session.Describe(name); found {
			fmt.Println(desc)
		} else {
			fmt.Printf("'%s' is not defined\n", name)
		}
		return false
	}
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Println(replHelp)
	case ":reset":
		session.Reset()
	case ":names":
		for _, name := range session.Names() {
			if m, ok := session.Lookup(name); ok {
				fmt.Printf("%s: %s\n", name, m.Type)
			}
		}
	default:
		fmt.Println("unknown command. Type :help for a list.")
	}
	return false
}

// evalInput runs one input. An interrupt cancels the running input but not
// the session.
func evalInput(session *runtime.Session, input string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	v, err := session.Eval(ctx, input)
	if err != nil {
		fmt.Fprintln(os.Stderr, diagnostics.RenderAll(diagnostics.FromError(err), input))
		return
	}
	if v != nil {
		fmt.Println(result(value.Display(v)))
	}
}

// readInput reads lines until they form a complete input. ok is false at
// end of input.
func readInput(ln *liner.State, session *runtime.Session, prompt string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = promptCont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C discards the pending input.
			return "", true
		}
		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !session.Incomplete(src) {
			return src, true
		}
	}
}

func loadHistory(ln *liner.State, cfg *config.Config) {
	if cfg.History == "" {
		return
	}
	if f, err := os.Open(cfg.History); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
}

func saveHistory(ln *liner.State, cfg *config.Config) {
	if cfg.History == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(cfg.History), 0o755); err != nil {
		return
	}
	if f, err := os.Create(cfg.History); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
}
