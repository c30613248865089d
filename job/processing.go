package job

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"framelapse/credentials"
	"framelapse/failures"
	"framelapse/logger"
	"framelapse/render"
	"framelapse/success"
)

// ProcessJob runs one queued render from its job directory: read the
// instructions, resolve storage credentials, run the pipeline, record the
// outcome, fire the callback, and drop the job directory.
func ProcessJob(ctx context.Context, jobDir string) error {
	instr, err := ReadInstructions(jobDir)
	if err != nil {
		logger.Errorf("Failed to read instructions for %s: %v", jobDir, err)
		id := jobIDFromDir(jobDir)
		os.RemoveAll(jobDir)
		return storeFailure(RenderInstructions{JobID: id}, err)
	}

	logger.Infof("Processing job %s: session %s from %s", instr.JobID, instr.Job.Session, instr.Job.Input)

	access, err := resolveAccess(instr)
	if err != nil {
		logger.Errorf("Failed to resolve credentials for %s: %v", instr.JobID, err)
		return storeFailure(instr, err)
	}

	videoBytes, renderErr := render.Render(ctx, instr.Job, access)
	if renderErr != nil {
		logger.Errorf("Render failed for %s: %v", instr.JobID, renderErr)
		if err := storeFailure(instr, renderErr); err != nil {
			return err
		}
		sendCallback(instr, renderErr, 0)
		cleanupJobDir(jobDir)
		return renderErr
	}

	if err := success.StoreSuccess(instr.JobID, instr.Job, videoBytes); err != nil {
		logger.Errorf("Failed to store success record for %s: %v", instr.JobID, err)
		// Don't fail the job for success storage errors
	}

	sendCallback(instr, nil, videoBytes)
	cleanupJobDir(jobDir)

	logger.Infof("Successfully processed job %s", instr.JobID)
	return nil
}

// resolveAccess looks up each storage key named by the job in the credentials
// store, keyed by backend scheme ("gcs", "s3", "sftp"). "gs" is accepted as an
// alias for "gcs" since that is the URI prefix users write. Schemes without a
// key fall back to ambient SDK credentials.
func resolveAccess(instr RenderInstructions) (map[string]map[string]string, error) {
	if len(instr.Job.StorageKeys) == 0 {
		return nil, nil
	}

	access := make(map[string]map[string]string, len(instr.Job.StorageKeys))
	for scheme, key := range instr.Job.StorageKeys {
		if scheme == "gs" {
			scheme = "gcs"
		}
		creds, err := credentials.GetCredentials(key)
		if err != nil {
			return nil, fmt.Errorf("credentials for %s backend: %w", scheme, err)
		}
		access[scheme] = creds
	}
	return access, nil
}

// storeFailure records the failure and returns the original error.
func storeFailure(instr RenderInstructions, failure error) error {
	if err := failures.StoreFailure(instr.JobID, failure, instr.Job); err != nil {
		logger.Errorf("Failed to store failure record for %s: %v", instr.JobID, err)
	}
	return failure
}

// callbackPayload is the body POSTed to a job's completion callback.
type callbackPayload struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	VideoBytes int64  `json:"video_bytes,omitempty"`
	Output     string `json:"output,omitempty"`
}

// sendCallback notifies the job's completion callback, if configured.
// Callback failures are logged, never fatal.
func sendCallback(instr RenderInstructions, renderErr error, videoBytes int64) {
	url := instr.Job.CompletionCallback
	if url == "" {
		return
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		logger.Warnf("Skipping callback for %s: unsupported URL %s", instr.JobID, url)
		return
	}

	payload := callbackPayload{JobID: instr.JobID, Status: "completed", VideoBytes: videoBytes, Output: instr.Job.Output}
	if renderErr != nil {
		payload.Status = "failed"
		payload.Error = renderErr.Error()
		payload.Output = ""
		payload.VideoBytes = 0
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("Failed to marshal callback payload for %s: %v", instr.JobID, err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Errorf("Failed to build callback request for %s: %v", instr.JobID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range instr.Job.CallbackHeaders {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		logger.Errorf("Callback for %s failed: %v", instr.JobID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Warnf("Callback for %s returned status %d", instr.JobID, resp.StatusCode)
	} else {
		logger.Debugf("Callback for %s delivered", instr.JobID)
	}
}

func cleanupJobDir(jobDir string) {
	// Only remove directories we created ourselves.
	if !strings.HasPrefix(filepath.Base(jobDir), jobDirPrefix) {
		return
	}
	if err := os.RemoveAll(jobDir); err != nil {
		logger.Errorf("Failed to cleanup job directory %s: %v", jobDir, err)
	}
}
