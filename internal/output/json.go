package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// newEncoder returns a JSON encoder that leaves <, > and & alone; narration
// and raw input often contain them.
func newEncoder(w io.Writer, indent string) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc
}

// JSONWriter buffers items and writes them as one JSON document.
// A single item is written as an object, several as an array.
type JSONWriter struct {
	w      *bufio.Writer
	indent string
	items  []any
	wrote  bool
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	if !pretty {
		indent = ""
	}
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		indent: indent,
	}
}

// Write buffers a single item.
func (w *JSONWriter) Write(data any) error {
	w.items = append(w.items, data)
	return nil
}

// WriteAll buffers multiple items.
func (w *JSONWriter) WriteAll(data []any) error {
	w.items = append(w.items, data...)
	return nil
}

// Flush writes the buffered items. Flushing twice without new items writes
// nothing the second time.
func (w *JSONWriter) Flush() error {
	if w.wrote && len(w.items) == 0 {
		return w.w.Flush()
	}

	var doc any = w.items
	switch len(w.items) {
	case 0:
		doc = []any{}
	case 1:
		doc = w.items[0]
	}

	if err := newEncoder(w.w, w.indent).Encode(doc); err != nil {
		return err
	}
	w.items = nil
	w.wrote = true
	return w.w.Flush()
}

// Close flushes and closes the writer.
func (w *JSONWriter) Close() error {
	return w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL).
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		w: bufio.NewWriter(w),
	}
}

// Write writes a single item as a JSON line and flushes it.
func (w *JSONLWriter) Write(data any) error {
	if err := newEncoder(w.w, "").Encode(data); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteAll writes multiple items as JSON lines.
func (w *JSONLWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
