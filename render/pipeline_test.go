package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framelapse/models"
	"framelapse/transcoder"
)

// stubTranscoder mimics ffmpeg's contract: it fails when the glob matches no
// frames, otherwise it writes a non-empty output file.
func stubTranscoder(ctx context.Context, pattern, output string, opts transcoder.Options) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("ffmpeg: no frames matched %s", pattern)
	}
	return os.WriteFile(output, []byte("video"), 0644)
}

func withStubTranscoder(t *testing.T) {
	t.Helper()
	prev, had := transcoder.Registry["mp4"]
	transcoder.Registry["mp4"] = stubTranscoder
	t.Cleanup(func() {
		if had {
			transcoder.Registry["mp4"] = prev
		} else {
			delete(transcoder.Registry, "mp4")
		}
	})
}

// listWorkspaces returns the framelapse workspace directories currently under
// the system temp root.
func listWorkspaces(t *testing.T) map[string]bool {
	t.Helper()
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		t.Fatalf("read temp root: %v", err)
	}
	dirs := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "framelapse-") {
			dirs[e.Name()] = true
		}
	}
	return dirs
}

func writeFrames(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("jpegdata"), 0644); err != nil {
			t.Fatalf("write frame %s: %v", name, err)
		}
	}
}

func TestRenderLocalToLocal(t *testing.T) {
	withStubTranscoder(t)

	input := t.TempDir()
	writeFrames(t, filepath.Join(input, "cam0"), "0001.jpg", "0002.jpg", "0003.jpg")
	output := filepath.Join(t.TempDir(), "out", "timelapse.mp4")

	before := listWorkspaces(t)

	jobSpec := models.RenderJob{Input: input, Session: "cam0", Output: output}
	size, err := Render(context.Background(), jobSpec, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("output video missing: %v", err)
	}
	if info.Size() == 0 || size != info.Size() {
		t.Errorf("video size = %d, Render reported %d", info.Size(), size)
	}

	after := listWorkspaces(t)
	for name := range after {
		if !before[name] {
			t.Errorf("leaked workspace %s", name)
		}
	}
}

func TestRenderEmptyFrameSetFails(t *testing.T) {
	withStubTranscoder(t)

	input := t.TempDir()
	// session directory exists but holds no jpg frames
	writeFrames(t, filepath.Join(input, "cam0"), "notes.txt")
	output := filepath.Join(t.TempDir(), "timelapse.mp4")

	before := listWorkspaces(t)

	jobSpec := models.RenderJob{Input: input, Session: "cam0", Output: output}
	if _, err := Render(context.Background(), jobSpec, nil); err == nil {
		t.Fatal("Render succeeded with an empty frame set")
	}

	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("output file exists after failed render")
	}

	// The workspace is removed on the failure path too
	after := listWorkspaces(t)
	for name := range after {
		if !before[name] {
			t.Errorf("leaked workspace %s after failure", name)
		}
	}
}

func TestRenderFrameOrderIsLexicographic(t *testing.T) {
	withStubTranscoder(t)

	var gotPattern string
	transcoder.Registry["mp4"] = func(ctx context.Context, pattern, output string, opts transcoder.Options) error {
		gotPattern = pattern
		return os.WriteFile(output, []byte("video"), 0644)
	}

	input := t.TempDir()
	writeFrames(t, filepath.Join(input, "cam0"), "0002.jpg", "0001.jpg")
	output := filepath.Join(t.TempDir(), "timelapse.mp4")

	jobSpec := models.RenderJob{Input: input, Session: "cam0", Output: output}
	if _, err := Render(context.Background(), jobSpec, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.HasSuffix(gotPattern, filepath.Join("cam0", "*.jpg")) {
		t.Errorf("transcoder pattern = %q, want session glob", gotPattern)
	}
	// Glob expansion is sorted, so the pattern contract fixes the frame order
	matches, err := filepath.Glob(gotPattern)
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 2 || filepath.Base(matches[0]) != "0001.jpg" {
		t.Errorf("glob order = %v, want lexicographic", matches)
	}
}

func TestRenderValidation(t *testing.T) {
	withStubTranscoder(t)

	cases := []struct {
		name string
		job  models.RenderJob
	}{
		{"missing session", models.RenderJob{Input: t.TempDir(), Output: "out.mp4"}},
		{"empty input", models.RenderJob{Session: "cam0", Output: "out.mp4"}},
		{"empty output", models.RenderJob{Input: t.TempDir(), Session: "cam0"}},
		{"bad scheme", models.RenderJob{Input: "ftp://host/x", Session: "cam0", Output: "out.mp4"}},
	}

	for _, tc := range cases {
		if _, err := Render(context.Background(), tc.job, nil); err == nil {
			t.Errorf("%s: Render succeeded, want error", tc.name)
		}
	}
}

func TestRenderWithoutTranscoder(t *testing.T) {
	prev, had := transcoder.Registry["mp4"]
	delete(transcoder.Registry, "mp4")
	t.Cleanup(func() {
		if had {
			transcoder.Registry["mp4"] = prev
		}
	})

	input := t.TempDir()
	writeFrames(t, filepath.Join(input, "cam0"), "0001.jpg")

	jobSpec := models.RenderJob{Input: input, Session: "cam0", Output: filepath.Join(t.TempDir(), "o.mp4")}
	if _, err := Render(context.Background(), jobSpec, nil); err == nil {
		t.Fatal("Render succeeded without a registered transcoder")
	}
}
