package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/kitelang/kite/internal/config"
	"github.com/kitelang/kite/internal/diagnostics"
)

var (
	posColor  = color.New(color.FgCyan)
	codeColor = color.New(color.FgRed, color.Bold)
)

// colorEnabled decides whether to emit ANSI colors on f. Auto follows
// the NO_COLOR convention (https://no-color.org/) and requires a
// terminal.
func colorEnabled(mode string, f *os.File) bool {
	switch mode {
	case config.ColorOn:
		return true
	case config.ColorOff:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// applyColor forces the fatih/color global switch to the decision;
// the library's own probe looks at stdout, and diagnostics go to
// stderr.
func applyColor(enabled bool) {
	color.NoColor = !enabled
}

// renderDiagnostics prints one line per diagnostic, in list order.
func renderDiagnostics(w io.Writer, errs []*diagnostics.DiagnosticError, colored bool) {
	for _, e := range errs {
		if !colored {
			fmt.Fprintf(w, "- %s\n", e.Error())
			continue
		}
		pos := e.Token.Pos()
		if e.File != "" {
			pos = e.File + ":" + pos
		}
		fmt.Fprintf(w, "- %s: %s %s\n",
			posColor.Sprint(pos),
			codeColor.Sprintf("[%s]", e.Code),
			e.Message)
	}
}
