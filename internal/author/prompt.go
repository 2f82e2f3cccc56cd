package author

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter asks an operator a question and returns the trimmed answer.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
	Printf(format string, args ...any)
}

// IOPrompter prompts on Out and reads line answers from In. Lines are read
// by a background goroutine so that Ask can return when its context ends;
// a line that arrives after that is kept for the next Ask.
type IOPrompter struct {
	in    *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan readResult
}

type readResult struct {
	line string
	err  error
}

// NewIOPrompter creates a prompter over the given streams, usually stdin and
// stderr.
func NewIOPrompter(in io.Reader, out io.Writer) *IOPrompter {
	return &IOPrompter{in: bufio.NewReader(in), out: out, lines: make(chan readResult)}
}

func (p *IOPrompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Ask returns io.EOF once input is exhausted; a final unterminated line is
// still returned as an answer.
func (p *IOPrompter) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, question)
	p.once.Do(func() { go p.read() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		if r.err != nil && (r.err != io.EOF || r.line == "") {
			return "", r.err
		}
		return strings.TrimSpace(r.line), nil
	}
}

// read feeds lines to Ask until the input fails, then closes the channel.
func (p *IOPrompter) read() {
	defer close(p.lines)
	for {
		line, err := p.in.ReadString('\n')
		p.lines <- readResult{line: line, err: err}
		if err != nil {
			return
		}
	}
}
