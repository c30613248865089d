package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"framelapse/config"
	"framelapse/job"
	"framelapse/logger"
	"framelapse/models"
	"framelapse/utils"
)

// verifyJWT verifies the bearer token on the request and returns its claims.
func verifyJWT(r *http.Request) (*models.RenderJWT, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	claims, err := utils.VerifyRenderJWT(token, utils.VerifyConfig{
		SecretKey: []byte(config.SHARED_JWT_SECRET),
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RenderSubmitResponse is returned after a render job is queued.
type RenderSubmitResponse struct {
	JobID string `json:"job_id"`
}

// RenderHandler queues a render job described by the JWT claims. The frames
// already live in object storage; nothing is uploaded to the server itself.
func RenderHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Render request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := verifyJWT(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	renderJob := claims.Job
	if renderJob.Input == "" || renderJob.Session == "" || renderJob.Output == "" {
		http.Error(w, "Job must name input, session and output", http.StatusBadRequest)
		return
	}

	jobID, err := utils.GenerateJobID()
	if err != nil {
		logger.Errorf("Failed to generate job id: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	jobDir := job.JobDir(jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		logger.Errorf("Failed to create job directory %s: %v", jobDir, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	instr := job.RenderInstructions{JobID: jobID, Job: renderJob}
	if err := job.WriteInstructions(jobDir, instr); err != nil {
		logger.Errorf("Failed to write instructions for %s: %v", jobID, err)
		os.RemoveAll(jobDir)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	job.AddPendingJob(jobDir)
	logger.Infof("Queued render job %s (session %s)", jobID, renderJob.Session)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(RenderSubmitResponse{JobID: jobID}); err != nil {
		logger.Errorf("Failed to encode render response: %v", err)
	}
}
