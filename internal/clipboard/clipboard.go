// Package clipboard writes text to the host clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when the host has no clipboard utility.
var ErrUnsupported = errors.New("clipboard: not supported on this host")

// Writer is the write-only clipboard capability.
type Writer interface {
	WriteAll(text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(text string) error

func (f WriterFunc) WriteAll(text string) error { return f(text) }

// System writes to the OS clipboard (pbcopy, xclip/xsel/wl-copy, or the Windows API).
type System struct{}

func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

// Client accepts a copy the caller already performed on its own side, such as
// the browser page. Nothing is written on this host.
type Client struct{}

func (Client) WriteAll(string) error { return nil }
