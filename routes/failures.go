package routes

import (
	"encoding/json"
	"net/http"

	"framelapse/failures"
	"framelapse/logger"
)

// FailureQueryHandler returns the failure record for a job id
func FailureQueryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "id parameter required", http.StatusBadRequest)
		return
	}

	record, err := failures.GetFailure(jobID)
	if err != nil {
		logger.Errorf("Failed to query failure for job %s: %v", jobID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if record == nil {
		// No failure recorded for this job
		response := map[string]interface{}{
			"job_id":  jobID,
			"status":  "success",
			"message": "No failure recorded for this job",
		}
		json.NewEncoder(w).Encode(response)
		return
	}

	response := map[string]interface{}{
		"job_id":    record.JobID,
		"status":    "failed",
		"timestamp": record.Timestamp,
		"error":     record.Error,
		"job_data":  record.JobData,
	}
	json.NewEncoder(w).Encode(response)
}

// FailureListHandler lists all failure records (admin endpoint)
func FailureListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := failures.ListFailures()
	if err != nil {
		logger.Errorf("Failed to list failures: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":   len(records),
		"records": records,
	})
}
