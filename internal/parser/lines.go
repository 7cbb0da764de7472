package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// maxLineSize bounds a single status line. Client names and addresses are
// short, but a misbehaving daemon should not blow the scanner's default 64K.
const maxLineSize = 1 << 20

// ReadFile reads the status report at path and returns its trimmed lines.
// A file that is empty or contains only whitespace yields no lines.
func ReadFile(fs afero.Fs, path string) ([]string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, NewFileError(path, "open", "cannot open status file", err)
	}
	defer file.Close()

	lines, err := ReadLines(file)
	if err != nil {
		return nil, NewFileError(path, "read", "cannot read status file", err)
	}
	return lines, nil
}

// ReadLines splits r into lines with surrounding whitespace removed.
// Blank lines are kept as empty strings so line positions stay stable, unless
// every line is blank, in which case nil is returned.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	hasContent := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			hasContent = true
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !hasContent {
		return nil, nil
	}
	return lines, nil
}
