package job

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"framelapse/credentials"
	"framelapse/failures"
	"framelapse/models"
	"framelapse/success"
	"framelapse/transcoder"
)

func initStores(t *testing.T) {
	t.Helper()
	base := t.TempDir()
	if err := success.Init(filepath.Join(base, "success.db")); err != nil {
		t.Fatalf("success.Init: %v", err)
	}
	t.Cleanup(func() { success.Close() })
	if err := failures.Init(filepath.Join(base, "failures.db")); err != nil {
		t.Fatalf("failures.Init: %v", err)
	}
	t.Cleanup(func() { failures.Close() })
}

func withStubTranscoder(t *testing.T) {
	t.Helper()
	prev, had := transcoder.Registry["mp4"]
	transcoder.Registry["mp4"] = func(ctx context.Context, pattern, output string, opts transcoder.Options) error {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("ffmpeg: no frames matched %s", pattern)
		}
		return os.WriteFile(output, []byte("video"), 0644)
	}
	t.Cleanup(func() {
		if had {
			transcoder.Registry["mp4"] = prev
		} else {
			delete(transcoder.Registry, "mp4")
		}
	})
}

// callbackRecorder is an HTTP target capturing the completion payload.
type callbackRecorder struct {
	mu      sync.Mutex
	payload callbackPayload
	called  bool
}

func (c *callbackRecorder) handler(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	json.NewDecoder(r.Body).Decode(&c.payload)
	c.called = true
	w.WriteHeader(http.StatusOK)
}

func (c *callbackRecorder) get() (callbackPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload, c.called
}

func writeJob(t *testing.T, id string, renderJob models.RenderJob) string {
	t.Helper()
	dir := JobDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	if err := WriteInstructions(dir, RenderInstructions{JobID: id, Job: renderJob}); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestProcessJobSuccess(t *testing.T) {
	resetJobState()
	initStores(t)
	withStubTranscoder(t)

	rec := &callbackRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	input := t.TempDir()
	if err := os.MkdirAll(filepath.Join(input, "cam0"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"0001.jpg", "0002.jpg"} {
		if err := os.WriteFile(filepath.Join(input, "cam0", name), []byte("jpegdata"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	output := filepath.Join(t.TempDir(), "timelapse.mp4")

	dir := writeJob(t, "procok1", models.RenderJob{
		Input:              input,
		Session:            "cam0",
		Output:             output,
		CompletionCallback: srv.URL,
	})

	if err := ProcessJob(context.Background(), dir); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}

	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("output video missing: %v", err)
	}

	payload, called := rec.get()
	if !called {
		t.Fatal("completion callback not delivered")
	}
	if payload.Status != "completed" {
		t.Errorf("callback status = %q, want completed", payload.Status)
	}
	if payload.JobID != "procok1" {
		t.Errorf("callback job id = %q, want procok1", payload.JobID)
	}
	if payload.VideoBytes != info.Size() {
		t.Errorf("callback video_bytes = %d, want %d", payload.VideoBytes, info.Size())
	}
	if payload.Output != output {
		t.Errorf("callback output = %q, want %q", payload.Output, output)
	}

	record, err := success.GetSuccess("procok1")
	if err != nil || record == nil {
		t.Fatalf("success record = %v, %v; want stored record", record, err)
	}
	if record.VideoBytes != info.Size() {
		t.Errorf("success record video bytes = %d, want %d", record.VideoBytes, info.Size())
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("job dir %s remains after successful processing", dir)
	}
}

func TestProcessJobFailure(t *testing.T) {
	resetJobState()
	initStores(t)
	withStubTranscoder(t)

	rec := &callbackRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	// The session directory holds no frames, so the transcode stage fails.
	input := t.TempDir()
	if err := os.MkdirAll(filepath.Join(input, "cam0"), 0755); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(t.TempDir(), "timelapse.mp4")

	dir := writeJob(t, "procfail1", models.RenderJob{
		Input:              input,
		Session:            "cam0",
		Output:             output,
		CompletionCallback: srv.URL,
	})

	if err := ProcessJob(context.Background(), dir); err == nil {
		t.Fatal("ProcessJob succeeded with an empty frame set")
	}

	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("output file exists after failed render")
	}

	payload, called := rec.get()
	if !called {
		t.Fatal("failure callback not delivered")
	}
	if payload.Status != "failed" {
		t.Errorf("callback status = %q, want failed", payload.Status)
	}
	if payload.Error == "" {
		t.Error("failure callback carries no error text")
	}
	if payload.VideoBytes != 0 || payload.Output != "" {
		t.Errorf("failure callback payload = %+v, want zeroed result fields", payload)
	}

	record, err := failures.GetFailure("procfail1")
	if err != nil || record == nil {
		t.Fatalf("failure record = %v, %v; want stored record", record, err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("job dir %s remains after failed processing", dir)
	}
}

func TestResolveAccessGsAlias(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "credentials.db")
	if err := credentials.OpenDB(dbPath); err != nil {
		t.Fatalf("credentials.OpenDB: %v", err)
	}
	t.Cleanup(func() { credentials.CloseDB() })

	creds := map[string]string{"credentialsJSON": "ZXlK"}
	if err := credentials.StoreCredentials("k1", creds); err != nil {
		t.Fatal(err)
	}

	instr := RenderInstructions{
		JobID: "alias1",
		Job: models.RenderJob{
			Input:       "gs://bucket/run1",
			Session:     "cam0",
			Output:      "gs://bucket/out.mp4",
			StorageKeys: map[string]string{"gs": "k1"},
		},
	}

	access, err := resolveAccess(instr)
	if err != nil {
		t.Fatalf("resolveAccess: %v", err)
	}
	// Lookups in the pipeline index by the internal scheme name.
	if access["gcs"] == nil || access["gcs"]["credentialsJSON"] != "ZXlK" {
		t.Errorf("access = %v, want gs key resolved under gcs", access)
	}
}
