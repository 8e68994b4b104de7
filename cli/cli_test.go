package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true

	os.Exit(m.Run())
}

const validSource = `
path /users/{uid} {
  read() { auth != null }
  write() { auth.uid == uid }
}
`

// trackingReader records whether anything tried to read it
type trackingReader struct {
	read bool
}

func (r *trackingReader) Read(p []byte) (int, error) {
	r.read = true

	return 0, os.ErrClosed
}

func run(t *testing.T, args []string, stdin string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errBuf bytes.Buffer

	code = Run(args, strings.NewReader(stdin), &out, &errBuf)

	return code, out.String(), errBuf.String()
}

func TestRunStdinToStdout(t *testing.T) {
	code, stdout, stderr := run(t, nil, validSource)

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "", stderr)

	// stdout carries exactly the document, no trailing newline
	assert.False(t, strings.HasSuffix(stdout, "\n"))

	var doc map[string]any

	assert.NoError(t, json.Unmarshal([]byte(stdout), &doc))

	_, ok := doc["rules"]
	assert.True(t, ok)
}

func TestRunStdoutIsPrettyPrinted(t *testing.T) {
	code, stdout, _ := run(t, nil, `path / { read() = true; }`)

	assert.Equal(t, ExitSuccess, code)

	expected := `{
  "rules": {
    ".read": "true"
  }
}`
	assert.Equal(t, expected, stdout)
}

func TestRunDeterministic(t *testing.T) {
	_, first, _ := run(t, nil, validSource)

	for range 5 {
		_, again, _ := run(t, nil, validSource)
		assert.Equal(t, first, again)
	}
}

func TestRunFileToFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "app.bolt")
	assert.NoError(t, os.WriteFile(input, []byte(validSource), 0o644))

	code, stdout, stderr := run(t, []string{input}, "")

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "", stdout)

	output := filepath.Join(dir, "app.json")
	assert.Contains(t, stderr, "Generating "+output+"...")

	written, err := os.ReadFile(output)
	assert.NoError(t, err)

	// file output ends with exactly one newline
	assert.True(t, strings.HasSuffix(string(written), "}\n"))
	assert.False(t, strings.HasSuffix(string(written), "\n\n"))
}

func TestRunBareNameResolvesExtensions(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "myapp.bolt"), []byte(validSource), 0o644))

	bare := filepath.Join(dir, "myapp")
	code, _, _ := run(t, []string{bare}, "")

	assert.Equal(t, ExitSuccess, code)

	_, err := os.Stat(filepath.Join(dir, "myapp.json"))
	assert.NoError(t, err)
}

func TestRunExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "app.bolt")
	assert.NoError(t, os.WriteFile(input, []byte(validSource), 0o644))

	target := filepath.Join(dir, "compiled")
	code, _, _ := run(t, []string{input, "--output", target}, "")

	assert.Equal(t, ExitSuccess, code)

	_, err := os.Stat(target + ".json")
	assert.NoError(t, err)
}

func TestRunUnknownFlag(t *testing.T) {
	stdin := &trackingReader{}

	var out, errBuf bytes.Buffer

	code := Run([]string{"--frobnicate"}, stdin, &out, &errBuf)

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "", out.String())
	assert.Contains(t, errBuf.String(), "Usage:")
	assert.False(t, stdin.read)
}

func TestRunTwoPositionals(t *testing.T) {
	stdin := &trackingReader{}

	var out, errBuf bytes.Buffer

	code := Run([]string{"one.bolt", "two.bolt"}, stdin, &out, &errBuf)

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errBuf.String(), "Usage:")
	assert.False(t, stdin.read)
}

func TestRunEmptyOutputValue(t *testing.T) {
	code, _, stderr := run(t, []string{"--output="}, validSource)

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "--output requires a file name")
	assert.Contains(t, stderr, "Usage:")
}

func TestRunHelp(t *testing.T) {
	code, stdout, stderr := run(t, []string{"--help"}, "")

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "", stdout)
	assert.Contains(t, stderr, "Usage:")
	assert.Contains(t, stderr, "boltc rules.bolt")
	assert.Contains(t, stderr, "-o, --output FILE")
}

func TestRunVersion(t *testing.T) {
	code, stdout, stderr := run(t, []string{"--version"}, "")

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "", stderr)
	assert.Contains(t, stdout, "boltc v")
}

func TestRunMissingInputFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.bolt")
	code, stdout, stderr := run(t, []string{missing}, "")

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "", stdout)
	assert.Contains(t, stderr, "boltc: failed to read "+missing)
}

func TestRunPathCollision(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "app.json")
	assert.NoError(t, os.WriteFile(input, []byte(validSource), 0o644))

	code, _, stderr := run(t, []string{input}, "")

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "input and output are the same file")

	// nothing may be written over the input
	content, err := os.ReadFile(input)
	assert.NoError(t, err)
	assert.Equal(t, validSource, string(content))
}

func TestRunParseErrorPosition(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		diagnostic string
	}{
		{
			name:       "stray token in path body",
			source:     "path /a {\n  read() { true }\n  ??\n}",
			diagnostic: "boltc:3:3:",
		},
		{
			name:       "indented stray token",
			source:     "path /a {\n  read() { true }\n    ??\n}",
			diagnostic: "boltc:3:5:",
		},
		{
			name:       "missing expression",
			source:     "path /a {\n  read() {\n  }\n}",
			diagnostic: "boltc:3:3:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(t, nil, tt.source)

			assert.Equal(t, ExitFailure, code)
			assert.Equal(t, "", stdout)
			assert.Contains(t, stderr, tt.diagnostic)
		})
	}
}

func TestRunGenerationError(t *testing.T) {
	source := `path /a { read() { missing() } }`

	code, stdout, stderr := run(t, nil, source)

	assert.Equal(t, ExitGeneration, code)
	assert.Equal(t, "", stdout)
	assert.Contains(t, stderr, "boltc: ")
	assert.Contains(t, stderr, "undefined function")
	assert.NotContains(t, stderr, "boltc:1:")
}

func TestRunDebugTrace(t *testing.T) {
	source := `path /a { read() { missing() } }`

	code, _, stderr := run(t, []string{"--debug"}, source)

	assert.Equal(t, ExitGeneration, code)
	assert.Contains(t, stderr, "failure trace:")
	// the concise diagnostic still follows the trace
	assert.Contains(t, stderr, "boltc: ")
}

func TestRunWriteFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "app.bolt")
	assert.NoError(t, os.WriteFile(input, []byte(validSource), 0o644))

	target := filepath.Join(dir, "no-such-dir", "out.json")
	code, _, stderr := run(t, []string{input, "-o", target}, "")

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "failed to write")
}
