package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Texter is implemented by results that have a plain-text rendering.
type Texter interface {
	Text() string
}

// TextWriter writes one plain-text record per line. Items are rendered
// through Texter, fmt.Stringer or fmt.Sprint, in that order of preference.
type TextWriter struct {
	w *bufio.Writer
}

// NewTextWriter creates a text writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write writes a single item followed by a newline.
func (w *TextWriter) Write(data any) error {
	var s string
	switch v := data.(type) {
	case string:
		s = v
	case Texter:
		s = v.Text()
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	if _, err := w.w.WriteString(strings.TrimRight(s, "\n") + "\n"); err != nil {
		return err
	}
	return nil
}

// WriteAll writes multiple items, one per line.
func (w *TextWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *TextWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *TextWriter) Close() error {
	return w.Flush()
}
