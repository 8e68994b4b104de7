package cli

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func strptr(s string) *string {
	return &s
}

func TestResolvePaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  *string
		wantIn  string
		wantOut string
	}{
		{
			name:    "bare name gets both extensions",
			input:   "myapp",
			wantIn:  "myapp.bolt",
			wantOut: "myapp.json",
		},
		{
			name:    "source extension kept",
			input:   "rules.bolt",
			wantIn:  "rules.bolt",
			wantOut: "rules.json",
		},
		{
			name:    "explicit output without extension",
			input:   "rules.bolt",
			output:  strptr("compiled"),
			wantIn:  "rules.bolt",
			wantOut: "compiled.json",
		},
		{
			name:    "explicit output with extension",
			input:   "rules.bolt",
			output:  strptr("out.json"),
			wantIn:  "rules.bolt",
			wantOut: "out.json",
		},
		{
			name:    "stdin with explicit output",
			input:   "",
			output:  strptr("compiled"),
			wantIn:  "",
			wantOut: "compiled.json",
		},
		{
			name:    "stdin without output goes to stdout",
			input:   "",
			wantIn:  "",
			wantOut: "",
		},
		{
			name:    "directories preserved",
			input:   "conf/app",
			wantIn:  "conf/app.bolt",
			wantOut: "conf/app.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, err := resolvePaths(tt.input, tt.output)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantIn, in)
			assert.Equal(t, tt.wantOut, out)
		})
	}
}

func TestResolvePathsCollision(t *testing.T) {
	// a .json input derives a .json output with the same name
	_, _, err := resolvePaths("app.json", nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSameFile))
	assert.Contains(t, err.Error(), "app.bolt")

	// explicit output naming the input file
	_, _, err = resolvePaths("app.bolt", strptr("app.bolt"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSameFile))
	assert.Contains(t, err.Error(), "--output app.json")
}
