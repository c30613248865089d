package render

import (
	"fmt"
	"os"

	"framelapse/logger"
)

// Workspace is the scoped temporary directory owned by one render. It is
// created before any pipeline stage runs and removed on every exit path.
type Workspace struct {
	Dir string
}

// NewWorkspace creates a uniquely-named directory under the system temp root.
func NewWorkspace() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "framelapse-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Remove deletes the workspace and everything in it. Safe to call more than
// once.
func (w *Workspace) Remove() {
	if w.Dir == "" {
		return
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		logger.Errorf("Failed to remove workspace %s: %v", w.Dir, err)
		return
	}
	w.Dir = ""
}
