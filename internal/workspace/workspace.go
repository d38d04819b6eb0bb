// SPDX-License-Identifier: EPL-2.0

// Package workspace provides scratch directories that live for the
// duration of one conversion.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const dirPrefix = "lyntool-"

// Workspace is a uniquely named directory. Callers must Close it on every
// exit path; Close removes the directory and everything in it.
type Workspace struct {
	id  uuid.UUID
	dir string

	once     sync.Once
	closeErr error
}

// New creates a workspace under parent, or under os.TempDir when parent is
// empty.
func New(parent string) (*Workspace, error) {
	if parent == "" {
		parent = os.TempDir()
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generating workspace id: %w", err)
	}

	dir := filepath.Join(parent, dirPrefix+id.String())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	return &Workspace{id: id, dir: dir}, nil
}

// ID identifies the workspace in log lines.
func (w *Workspace) ID() string  { return w.id.String() }
func (w *Workspace) Dir() string { return w.dir }

// Close is safe to call more than once.
func (w *Workspace) Close() error {
	w.once.Do(func() {
		if err := os.RemoveAll(w.dir); err != nil {
			w.closeErr = fmt.Errorf("removing workspace %s: %w", w.id, err)
		}
	})

	return w.closeErr
}
