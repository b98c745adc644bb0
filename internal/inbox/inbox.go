// Package inbox implements the pre-staged text handoff file.
//
// A trigger (the narrate speak command, a hotkey script, a clipboard helper)
// writes text to a well-known path and then pokes the server. When the file
// exists it takes priority over the request body, and it is deleted after
// it has been read.
package inbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrEmpty is returned by Take when no text is staged.
var ErrEmpty = errors.New("inbox: nothing staged")

// Inbox is a single-slot file mailbox.
type Inbox struct {
	path string
	mu   sync.Mutex
}

// New creates an Inbox backed by path.
func New(path string) *Inbox {
	return &Inbox{path: path}
}

// Path returns the backing file path.
func (i *Inbox) Path() string {
	return i.path
}

// Put stages text, replacing anything already staged. The file is written
// to a temporary name and renamed so a concurrent Take never sees a
// partial write.
func (i *Inbox) Put(text string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(i.path), ".inbox-*")
	if err != nil {
		return fmt.Errorf("inbox: stage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("inbox: stage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("inbox: stage: %w", err)
	}
	if err := os.Rename(tmp.Name(), i.path); err != nil {
		return fmt.Errorf("inbox: stage: %w", err)
	}
	return nil
}

// Take reads and deletes the staged text. It returns ErrEmpty when nothing
// is staged. An empty staged file is consumed and reported as ErrEmpty.
func (i *Inbox) Take() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	data, err := os.ReadFile(i.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrEmpty
	}
	if err != nil {
		return "", fmt.Errorf("inbox: read: %w", err)
	}
	if err := os.Remove(i.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("inbox: remove: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	return string(data), nil
}

// Pending reports whether text is staged.
func (i *Inbox) Pending() bool {
	_, err := os.Stat(i.path)
	return err == nil
}
