// Package capture abstracts how raw QR text reaches the scanner client: from
// a file the operator picked, or from a remote image-decoding service. The
// rest of the workflow only ever sees decoded text or one of two distinct
// non-error outcomes.
package capture

import (
	"context"
	"errors"
	"os"
	"strings"
)

// ErrNoCodeFound means the input held no readable QR symbol. Retryable with a
// better shot; never conflated with cancellation.
var ErrNoCodeFound = errors.New("no QR code found")

// ErrCancelled means the operator backed out. A legitimate non-error outcome:
// the workflow treats it as a no-op.
var ErrCancelled = errors.New("capture cancelled")

// Source produces the raw text of one scanned QR symbol.
type Source interface {
	Capture(ctx context.Context) (string, error)
}

// FileSource reads previously captured symbol text from a file. An empty path
// is the operator declining to pick anything.
type FileSource struct {
	Path string
}

func (f FileSource) Capture(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(f.Path) == "" {
		return "", ErrCancelled
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", ErrNoCodeFound
	}
	return text, nil
}
