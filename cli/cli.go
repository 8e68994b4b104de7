// Package cli implements the boltc command: flag handling, input and
// output resolution, translation, and exit-code selection.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/kong"

	"github.com/boltlang/boltc"
	"github.com/boltlang/boltc/parser"
)

// Exit codes. Usage, I/O, and parse failures share one code; generation
// failures are distinguishable for callers that parse but cannot compile.
const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitGeneration = 2
)

// Options is the full flag surface of the command
type Options struct {
	Help    bool    `short:"h" help:"Show usage and exit."`
	Version bool    `short:"v" help:"Print the version string and exit."`
	Debug   bool    `short:"d" help:"Dump internal failure traces to stderr."`
	Output  *string `short:"o" placeholder:"FILE" help:"Write the rules document to FILE."`
	Input   string  `arg:"" optional:"" help:"Bolt source file; reads stdin when omitted."`
}

// Run executes one translation and returns the process exit code
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts Options

	k, err := kong.New(&opts,
		kong.Name(programName),
		kong.NoDefaultHelp(),
		kong.Writers(stderr, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		reportError(stderr, nil, err.Error())

		return ExitFailure
	}

	if _, err := k.Parse(args); err != nil {
		reportError(stderr, nil, err.Error())
		printUsage(stderr)

		return ExitFailure
	}

	if opts.Help {
		printUsage(stderr)

		return ExitSuccess
	}

	if opts.Version {
		fmt.Fprintf(stdout, "%s v%s\n", programName, boltc.Version)

		return ExitSuccess
	}

	// --output with an empty value is a misuse, distinct from the flag
	// being omitted
	if opts.Output != nil && *opts.Output == "" {
		reportError(stderr, nil, "--output requires a file name")
		printUsage(stderr)

		return ExitFailure
	}

	config, err := boltc.LoadConfig(boltc.DefaultConfigFile)
	if err != nil {
		reportError(stderr, nil, err.Error())

		return ExitFailure
	}

	applyColorMode(config.Color)

	debug := opts.Debug || config.Debug

	inPath, outPath, err := resolvePaths(opts.Input, opts.Output)
	if err != nil {
		reportError(stderr, nil, err.Error())

		return ExitFailure
	}

	req, err := readSource(inPath, stdin, stderr)
	if err != nil {
		reportError(stderr, nil, err.Error())

		return ExitFailure
	}

	text, err := Translate(req.source)
	if err != nil {
		if debug {
			dumpTrace(stderr, err)
		}

		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			reportError(stderr, &parseErr.Position, parseErr.Message)

			return ExitFailure
		}

		reportError(stderr, nil, err.Error())

		return ExitGeneration
	}

	if err := deliver(stdout, stderr, outPath, text); err != nil {
		reportError(stderr, nil, err.Error())

		return ExitFailure
	}

	return ExitSuccess
}
