package render

import (
	"os"
	"testing"
)

func TestWorkspaceLifecycle(t *testing.T) {
	ws, err := NewWorkspace()
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}

	info, err := os.Stat(ws.Dir)
	if err != nil {
		t.Fatalf("workspace directory missing: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("workspace %s is not a directory", ws.Dir)
	}

	dir := ws.Dir
	ws.Remove()

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("workspace %s still exists after Remove", dir)
	}

	// Remove must be safe to call again
	ws.Remove()
}

func TestWorkspaceUniqueNames(t *testing.T) {
	a, err := NewWorkspace()
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	defer a.Remove()

	b, err := NewWorkspace()
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	defer b.Remove()

	if a.Dir == b.Dir {
		t.Errorf("two workspaces share the same directory %s", a.Dir)
	}
}
