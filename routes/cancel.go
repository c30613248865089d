package routes

import (
	"fmt"
	"net/http"

	"framelapse/job"
	"framelapse/logger"
)

// CancelJobHandler cancels a pending or running job by id
func CancelJobHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Cancel job request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	if err := job.CancelJob(jobID); err != nil {
		logger.Warnf("Cancel failed for %s: %v", jobID, err)
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	logger.Infof("Cancelled job %s", jobID)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"job_id":%q,"state":"cancelled"}`, jobID)
}
