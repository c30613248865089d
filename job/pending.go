package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"framelapse/logger"
)

// JobState represents the current state of a render job
type JobState int

const (
	JobStatePending JobState = iota
	JobStateProcessing
	JobStateCompleted
	JobStateFailed
	JobStateCancelled
)

var (
	pendingJobs []string                              // slice of directory paths with pending jobs
	activeJobs  = make(map[string]context.CancelFunc) // job id -> cancel function
	jobStates   = make(map[string]JobState)           // job id -> job state
	mu          sync.RWMutex
)

// AddPendingJob adds a job directory to the pending list
func AddPendingJob(dir string) {
	id := jobIDFromDir(dir)
	mu.Lock()
	defer mu.Unlock()
	pendingJobs = append(pendingJobs, dir)
	jobStates[id] = JobStatePending
}

// RemovePendingJob removes a job directory from the pending list
func RemovePendingJob(dir string) {
	mu.Lock()
	defer mu.Unlock()
	for i, p := range pendingJobs {
		if p == dir {
			pendingJobs = append(pendingJobs[:i], pendingJobs[i+1:]...)
			break
		}
	}
}

// GetPendingJobs returns a copy of the pending jobs list
func GetPendingJobs() []string {
	mu.RLock()
	defer mu.RUnlock()
	jobs := make([]string, len(pendingJobs))
	copy(jobs, pendingJobs)
	return jobs
}

// CancelJob cancels a job by id. Only pending and processing jobs can be
// cancelled; processing jobs abort via their context.
func CancelJob(jobID string) error {
	mu.Lock()
	defer mu.Unlock()

	state, exists := jobStates[jobID]
	if !exists {
		return fmt.Errorf("job %s not found", jobID)
	}

	switch state {
	case JobStateCompleted:
		return fmt.Errorf("job %s is already completed", jobID)
	case JobStateFailed:
		return fmt.Errorf("job %s has already failed", jobID)
	case JobStateCancelled:
		return fmt.Errorf("job %s is already cancelled", jobID)
	case JobStatePending:
		jobStates[jobID] = JobStateCancelled
		for i, p := range pendingJobs {
			if jobIDFromDir(p) == jobID {
				pendingJobs = append(pendingJobs[:i], pendingJobs[i+1:]...)
				break
			}
		}
		// Drop the job directory too, or the startup rescan would requeue the
		// cancelled job after a restart.
		cleanupJobDir(JobDir(jobID))
		return nil
	case JobStateProcessing:
		cancel, active := activeJobs[jobID]
		if !active {
			return fmt.Errorf("job %s is processing but not active", jobID)
		}
		cancel()
		return nil
	default:
		return fmt.Errorf("job %s is in unknown state", jobID)
	}
}

// GetJobState returns the current state of a job
func GetJobState(jobID string) (JobState, bool) {
	mu.RLock()
	defer mu.RUnlock()
	state, exists := jobStates[jobID]
	return state, exists
}

// ScanForPendingJobs scans the temp root for framelapse job directories
// carrying an instructions.json, requeueing work left over from a previous
// run.
func ScanForPendingJobs() error {
	tempDir := os.TempDir()
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), jobDirPrefix) {
			continue
		}
		dirPath := filepath.Join(tempDir, entry.Name())
		instrPath := filepath.Join(dirPath, "instructions.json")
		if _, err := os.Stat(instrPath); err == nil {
			AddPendingJob(dirPath)
			logger.Infof("Requeued job %s from %s", jobIDFromDir(dirPath), dirPath)
		}
	}
	return nil
}

// processJob runs a single job directory through the pipeline, tracking its
// state and cancel function.
func processJob(jobDir string) error {
	id := jobIDFromDir(jobDir)

	mu.Lock()
	if jobStates[id] == JobStateCancelled {
		mu.Unlock()
		return nil
	}
	jobStates[id] = JobStateProcessing
	mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mu.Lock()
	activeJobs[id] = cancel
	mu.Unlock()

	defer func() {
		mu.Lock()
		delete(activeJobs, id)
		mu.Unlock()
	}()

	err := ProcessJob(ctx, jobDir)

	mu.Lock()
	if err != nil {
		if ctx.Err() == context.Canceled {
			jobStates[id] = JobStateCancelled
		} else {
			jobStates[id] = JobStateFailed
		}
	} else {
		jobStates[id] = JobStateCompleted
	}
	mu.Unlock()

	return err
}

// ProcessPendingJobs runs in a loop draining pending jobs one at a time.
// Finished jobs leave the pending list whether they succeeded or failed;
// failures are recorded in the failure store, not retried.
func ProcessPendingJobs() {
	for {
		jobs := GetPendingJobs()
		if len(jobs) == 0 {
			time.Sleep(1 * time.Second)
			continue
		}
		logger.Infof("Processing %d pending jobs", len(jobs))

		for _, jobDir := range jobs {
			err := processJob(jobDir)
			RemovePendingJob(jobDir)
			if err != nil {
				logger.Errorf("Failed to process job in %s: %v", jobDir, err)
			} else {
				logger.Infof("Processed job in %s", jobDir)
			}
		}
	}
}
