package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/boltlang/boltc"
	"github.com/boltlang/boltc/tokenizer"
)

const programName = "boltc"

var (
	noticeColor = color.New(color.FgBlue)
	errorColor  = color.New(color.FgRed)
)

// notice prints a progress line to stderr
func notice(w io.Writer, format string, args ...any) {
	noticeColor.Fprintf(w, format+"\n", args...)
}

// reportError prints one diagnostic line in the form
// boltc[:line:column]: message. The position segment is omitted entirely
// when no position applies.
func reportError(w io.Writer, pos *tokenizer.Position, message string) {
	if pos != nil {
		errorColor.Fprintf(w, "%s:%d:%d: %s\n", programName, pos.Line, pos.Column, message)

		return
	}

	errorColor.Fprintf(w, "%s: %s\n", programName, message)
}

// applyColorMode maps the configured color mode onto the color package
func applyColorMode(mode string) {
	switch mode {
	case boltc.ColorAlways:
		color.NoColor = false
	case boltc.ColorNever:
		color.NoColor = true
	}
}

const usageText = `boltc translates Bolt rules into a JSON rules document.

Usage:
  boltc [flags] [file]

Examples:
  boltc rules.bolt
  boltc rules.bolt --output compiled.json
  cat rules.bolt | boltc > rules.json

Flags:
  -h, --help           Show usage and exit.
  -v, --version        Print the version string and exit.
  -d, --debug          Dump internal failure traces to stderr.
  -o, --output FILE    Write the rules document to FILE.
`

// printUsage writes the help text to stderr; the caller picks the exit code
func printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}
