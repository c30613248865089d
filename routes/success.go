package routes

import (
	"encoding/json"
	"net/http"

	"framelapse/logger"
	"framelapse/success"
)

// SuccessQueryHandler returns the success record for a job id
func SuccessQueryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "id parameter required", http.StatusBadRequest)
		return
	}

	record, err := success.GetSuccess(jobID)
	if err != nil {
		logger.Errorf("Failed to query success for job %s: %v", jobID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if record == nil {
		response := map[string]interface{}{
			"job_id":  jobID,
			"status":  "not_found",
			"message": "No completed render recorded for this job",
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(response)
		return
	}

	response := map[string]interface{}{
		"job_id":      record.JobID,
		"status":      "completed",
		"timestamp":   record.Timestamp,
		"video_bytes": record.VideoBytes,
		"job_data":    record.JobData,
	}
	json.NewEncoder(w).Encode(response)
}

// SuccessListHandler lists all success records (admin endpoint)
func SuccessListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := success.ListSuccessRecords()
	if err != nil {
		logger.Errorf("Failed to list success records: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":   len(records),
		"records": records,
	})
}
