package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Notifier tells the operator how a fire-and-forget action went.
type Notifier interface {
	Success(msg string)
	Failure(msg string, err error)
}

// Writer prints notifications as single lines.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	logger zerolog.Logger
}

// NewWriter creates a notifier writing to out.
func NewWriter(out io.Writer, logger zerolog.Logger) *Writer {
	return &Writer{out: out, logger: logger}
}

// Success implements Notifier.
func (w *Writer) Success(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "ok: %s\n", msg)
}

// Failure implements Notifier.
func (w *Writer) Failure(msg string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		fmt.Fprintf(w.out, "failed: %s %v\n", msg, err)
	} else {
		fmt.Fprintf(w.out, "failed: %s\n", msg)
	}
	w.logger.Warn().Err(err).Msg(msg)
}
