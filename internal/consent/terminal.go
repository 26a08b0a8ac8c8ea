package consent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Terminal is an interactive gate reading y/n answers from a terminal.
// Prompts are serialized so concurrent requests do not interleave their
// question and answer lines. A single goroutine owns the input stream;
// answers reach prompts through a channel, so a prompt abandoned on a
// cancelled context never leaves a competing reader behind.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	lines chan string
}

// NewTerminal builds a terminal gate reading from in and writing to out,
// typically os.Stdin and os.Stderr. The reader goroutine lives until the
// input stream ends.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{out: out, lines: make(chan string)}
	go func() {
		r := bufio.NewReader(in)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				t.lines <- line
			}
			if err != nil {
				close(t.lines)
				return
			}
		}
	}()
	return t
}

// Decide prints the prompt and waits for a line. Anything other than an
// explicit yes, including a closed input or a cancelled context, rejects.
func (t *Terminal) Decide(ctx context.Context, p Prompt) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "\n%s\n", p.Title)
	if p.Detail != "" {
		fmt.Fprintf(t.out, "%s\n", p.Detail)
	}
	fmt.Fprintf(t.out, "Approve? [y/N]: ")

	select {
	case line, ok := <-t.lines:
		if !ok {
			return Rejected
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return Approved
		}
		return Rejected
	case <-ctx.Done():
		return Rejected
	}
}
