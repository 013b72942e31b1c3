package display

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// maxLine caps a single input line.
const maxLine = 1 << 20

// Input reads lines from a stream without blocking cancellation: lines are
// scanned on a goroutine and ReadLine returns as soon as ctx is done.
type Input struct {
	r     io.Reader
	once  sync.Once
	lines chan string
	err   error
}

// NewInput creates an Input reading r.
func NewInput(r io.Reader) *Input {
	return &Input{r: r, lines: make(chan string)}
}

func (in *Input) start() {
	go func() {
		scanner := bufio.NewScanner(in.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
		for scanner.Scan() {
			in.lines <- scanner.Text()
		}
		in.err = scanner.Err()
		if in.err == nil {
			in.err = io.EOF
		}
		close(in.lines)
	}()
}

// ReadLine returns the next line without its terminator. It returns io.EOF
// at end of input and ctx.Err() when ctx is cancelled first.
func (in *Input) ReadLine(ctx context.Context) (string, error) {
	in.once.Do(in.start)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-in.lines:
		if !ok {
			return "", in.err
		}
		return line, nil
	}
}
