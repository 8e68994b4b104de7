package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// File conventions
const (
	sourceExt = ".bolt"
	targetExt = ".json"
)

// ErrSameFile is returned when input and output resolve to the same path
var ErrSameFile = errors.New("input and output are the same file")

type origin int

const (
	originStdin origin = iota
	originFile
)

// request carries one translation's source text and where it came from
type request struct {
	source string
	origin origin
	path   string // resolved input path, empty for stdin
}

// resolvePaths computes the input and output file names. An empty input
// means stdin; an empty output means stdout. Extensions are appended only
// when the given name has none, so a deliberate foo.json input is caught
// by the collision check rather than silently rewritten.
func resolvePaths(input string, output *string) (string, string, error) {
	inPath := input
	if inPath != "" && filepath.Ext(inPath) == "" {
		inPath += sourceExt
	}

	var outPath string

	switch {
	case output != nil:
		outPath = *output
		if filepath.Ext(outPath) == "" {
			outPath += targetExt
		}
	case inPath != "":
		outPath = swapExt(inPath, targetExt)
	}

	if inPath != "" && inPath == outPath {
		if output != nil {
			return "", "", fmt.Errorf("%w: %s (did you mean --output %s?)",
				ErrSameFile, inPath, swapExt(inPath, targetExt))
		}

		return "", "", fmt.Errorf("%w: %s (did you mean to compile %s?)",
			ErrSameFile, inPath, swapExt(inPath, sourceExt))
	}

	return inPath, outPath, nil
}

// swapExt replaces the extension of path with ext
func swapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// readSource reads the translation input. For stdin it reads to end of
// stream, emitting a hint first when stdin is an interactive terminal.
func readSource(inPath string, stdin io.Reader, stderr io.Writer) (request, error) {
	if inPath == "" {
		if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			fmt.Fprintln(stderr, "Reading Bolt rules from stdin (press Ctrl-D to finish)...")
		}

		data, err := io.ReadAll(stdin)
		if err != nil {
			return request{}, fmt.Errorf("failed to read stdin: %w", err)
		}

		return request{source: string(data), origin: originStdin}, nil
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return request{}, fmt.Errorf("failed to read %s: %w", inPath, err)
	}

	return request{source: string(data), origin: originFile, path: inPath}, nil
}
