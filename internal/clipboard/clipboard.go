package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

var ErrClipboardUnavailable = errors.New("clipboard is unavailable")

// Service writes text to a clipboard.
type Service interface {
	Write(ctx context.Context, text string) error
}

// System writes to the operating system clipboard.
type System struct{}

// NewSystem returns the system clipboard, or Disabled when the platform has
// no clipboard utility available.
func NewSystem() Service {
	if clipboard.Unsupported {
		return Disabled{}
	}
	return System{}
}

// Write implements Service. The underlying call may shell out to xclip,
// xsel or pbcopy, so it runs off the caller's goroutine and honours ctx.
func (System) Write(ctx context.Context, text string) error {
	done := make(chan error, 1)
	go func() {
		done <- clipboard.WriteAll(text)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to write clipboard: %w", err)
		}
		return nil
	}
}

// Disabled rejects every write.
type Disabled struct{}

// Write implements Service.
func (Disabled) Write(context.Context, string) error {
	return ErrClipboardUnavailable
}
