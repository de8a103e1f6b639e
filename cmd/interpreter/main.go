// Package main is the entry point for the interpreter CLI: a "run" command
// that executes a script file and a "repl" command for interactive use.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/dimbo4ka/interpreter/internal/debug"
	"github.com/dimbo4ka/interpreter/interp"
	"github.com/dimbo4ka/interpreter/parser"
)

const (
	historyFile = ".interpreter_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

var traceEnabled bool

var rootCmd = &cobra.Command{
	Use:   "interpreter",
	Short: "Run or explore scripts in the toy interpreted language",
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute a script file",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	RunE:  runRepl,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&traceEnabled, "trace", false, "log evaluator tracing to stderr")
	rootCmd.AddCommand(runCmd, replCmd)
}

func main() {
	cobra.OnInitialize(func() {
		if traceEnabled {
			debug.SetLoggerf(func(format string, args ...interface{}) {
				fmt.Fprintf(os.Stderr, format+"\n", args...)
			})
		}
	})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScript(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("interpreter: cannot read %s: %w", args[0], err)
	}

	ok := interp.Interpret(src, os.Stdin, os.Stdout)
	if !ok {
		os.Exit(1)
	}
	return nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	fmt.Println("interpreter REPL. Ctrl+D to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		// os.Exit skips deferred calls, so flush history here too.
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		src, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		interp.Interpret([]byte(src), os.Stdin, os.Stdout)
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// readByParseProbe accumulates lines until they form a syntactically
// complete program (or the parser reports a real error, not merely an
// unterminated block), so "if"/"while"/"for"/"function" headers can span
// multiple input lines in the REPL.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := parser.Parse([]byte(src))
		if perr == nil {
			return src, true
		}
		if !looksIncomplete(perr) {
			return src, true
		}
	}
}

// looksIncomplete reports whether perr is the kind of error a block left
// open across REPL lines would produce (an unexpected EOF), as opposed to a
// genuine syntax error the user should see immediately.
func looksIncomplete(perr error) bool {
	return strings.Contains(perr.Error(), "EOF")
}
