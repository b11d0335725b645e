package parser

import (
	"bufio"
	"fmt"
	"io"
)

// maxLineBytes bounds a single log line. Combat logs are short lines; this
// guards the scanner against corrupt files.
const maxLineBytes = 1024 * 1024

// readLines materializes a newline-delimited reader. CRLF is handled by
// splitLine when each line is parsed.
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return lines, nil
}
