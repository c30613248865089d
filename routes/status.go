package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"framelapse/job"
	"framelapse/logger"
)

// JobStatusResponse represents the job status response
type JobStatusResponse struct {
	JobID string `json:"job_id"`
	State string `json:"state"`
}

func stateString(state job.JobState) string {
	switch state {
	case job.JobStatePending:
		return "pending"
	case job.JobStateProcessing:
		return "processing"
	case job.JobStateCompleted:
		return "completed"
	case job.JobStateFailed:
		return "failed"
	case job.JobStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// JobStatusHandler returns the status of a job by id
func JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Job status request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	state, exists := job.GetJobState(jobID)
	if !exists {
		http.Error(w, fmt.Sprintf("Job %s not found", jobID), http.StatusNotFound)
		return
	}

	response := JobStatusResponse{JobID: jobID, State: stateString(state)}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Errorf("Failed to encode status response: %v", err)
	}
}
