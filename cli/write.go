package cli

import (
	"fmt"
	"io"
	"os"
)

// deliver writes the translated text to its destination. File output gets
// a progress notice on stderr first and a single trailing newline; stdout
// output is the bare document so it composes in pipes.
func deliver(stdout, stderr io.Writer, outPath, text string) error {
	if outPath == "" {
		_, err := io.WriteString(stdout, text)

		return err
	}

	notice(stderr, "Generating %s...", outPath)

	if err := os.WriteFile(outPath, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	return nil
}
