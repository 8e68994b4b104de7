package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/boltlang/boltc/parser"
	"github.com/boltlang/boltc/rules"
)

// Translate compiles Bolt source text into the pretty-printed rules
// document. The result carries no trailing newline; file delivery appends
// one. Parse failures come back as *parser.ParseError, generation failures
// as plain errors without a position.
func Translate(source string) (string, error) {
	symbols, err := parser.Parse(source)
	if err != nil {
		return "", err
	}

	doc, err := rules.Generate(symbols)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize rules document: %w", err)
	}

	return string(data), nil
}

// dumpTrace writes the full error chain before the concise diagnostic
// line. Debug output supplements the diagnostic, it never replaces it.
func dumpTrace(w io.Writer, err error) {
	fmt.Fprintf(w, "%s: failure trace:\n", programName)

	depth := 0
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(w, "  %*s%T: %v\n", depth*2, "", e, e)
		depth++
	}
}
