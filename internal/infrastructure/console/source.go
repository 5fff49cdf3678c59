package console

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"BookTriage/internal/ports"
)

// maxLineSize bounds a single command line.
const maxLineSize = 1 << 20

// LineSource reads one command per line, printing a prompt first.
type LineSource struct {
	scanner *bufio.Scanner
	prompt  string
	out     io.Writer
}

var _ ports.CommandSource = (*LineSource)(nil)

// NewLineSource reads from r; prompt is written to out before each read when out is set.
func NewLineSource(r io.Reader, out io.Writer, prompt string) *LineSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &LineSource{scanner: scanner, prompt: prompt, out: out}
}

// Next blocks for the next line. It returns io.EOF once input is exhausted.
func (s *LineSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.out != nil && s.prompt != "" {
		fmt.Fprint(s.out, s.prompt)
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}
