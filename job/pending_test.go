package job

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"framelapse/models"
)

// resetJobState clears the package-level job tracking between tests.
func resetJobState() {
	mu.Lock()
	defer mu.Unlock()
	pendingJobs = nil
	activeJobs = make(map[string]context.CancelFunc)
	jobStates = make(map[string]JobState)
}

func TestPendingJobLifecycle(t *testing.T) {
	resetJobState()

	dir := JobDir("pending1")
	AddPendingJob(dir)

	jobs := GetPendingJobs()
	if len(jobs) != 1 || jobs[0] != dir {
		t.Fatalf("pending jobs = %v, want [%s]", jobs, dir)
	}

	state, ok := GetJobState("pending1")
	if !ok || state != JobStatePending {
		t.Errorf("state = %v, %v; want pending", state, ok)
	}

	RemovePendingJob(dir)
	if len(GetPendingJobs()) != 0 {
		t.Errorf("pending jobs not empty after remove")
	}
}

func TestCancelPendingJob(t *testing.T) {
	resetJobState()

	dir := JobDir("cancel1")
	AddPendingJob(dir)

	if err := CancelJob("cancel1"); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}

	state, ok := GetJobState("cancel1")
	if !ok || state != JobStateCancelled {
		t.Errorf("state = %v, want cancelled", state)
	}
	if len(GetPendingJobs()) != 0 {
		t.Errorf("cancelled job still pending")
	}

	// A second cancel reports the terminal state
	if err := CancelJob("cancel1"); err == nil {
		t.Error("second CancelJob succeeded, want error")
	}
}

func TestCancelPendingJobRemovesDirectory(t *testing.T) {
	resetJobState()

	dir := JobDir("cancel2")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	instr := RenderInstructions{
		JobID: "cancel2",
		Job:   models.RenderJob{Input: "/frames", Session: "cam0", Output: "/out.mp4"},
	}
	if err := WriteInstructions(dir, instr); err != nil {
		t.Fatal(err)
	}
	AddPendingJob(dir)

	if err := CancelJob("cancel2"); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("job dir %s still exists after cancel", dir)
	}

	// A restart's rescan must not resurrect the cancelled job.
	resetJobState()
	if err := ScanForPendingJobs(); err != nil {
		t.Fatalf("ScanForPendingJobs: %v", err)
	}
	for _, p := range GetPendingJobs() {
		if p == dir {
			t.Errorf("cancelled job %s requeued by rescan", dir)
		}
	}
}

func TestCancelUnknownJob(t *testing.T) {
	resetJobState()
	if err := CancelJob("no-such-job"); err == nil {
		t.Error("CancelJob succeeded for unknown id")
	}
}

func TestScanForPendingJobs(t *testing.T) {
	resetJobState()

	dir := JobDir("scan1")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	instr := RenderInstructions{
		JobID: "scan1",
		Job:   models.RenderJob{Input: "/frames", Session: "cam0", Output: "/out.mp4"},
	}
	if err := WriteInstructions(dir, instr); err != nil {
		t.Fatal(err)
	}

	// A namespaced directory without instructions must be ignored
	emptyDir := JobDir("scan2")
	if err := os.MkdirAll(emptyDir, 0755); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(emptyDir) })

	// Unrelated temp dirs must be ignored too
	unrelated := filepath.Join(os.TempDir(), "framelapse-scan-unrelated")
	if err := os.MkdirAll(unrelated, 0755); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(unrelated) })

	if err := ScanForPendingJobs(); err != nil {
		t.Fatalf("ScanForPendingJobs: %v", err)
	}

	var found bool
	for _, p := range GetPendingJobs() {
		if p == dir {
			found = true
		}
		if p == emptyDir || p == unrelated {
			t.Errorf("scan picked up %s", p)
		}
	}
	if !found {
		t.Errorf("scan did not find %s", dir)
	}
}
