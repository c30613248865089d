package routes

import (
	"encoding/json"
	"net/http"

	"framelapse/credentials"
	"framelapse/logger"
	"framelapse/utils"
)

// RegisterCredentialsHandler stores a storage backend credential set and
// returns the access key render jobs use to reference it.
func RegisterCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := verifyJWT(r); err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	keyString, err := utils.GenerateRandomHex(16)
	if err != nil {
		http.Error(w, "Failed to generate key", http.StatusInternalServerError)
		return
	}

	credsBody := make(map[string]string)
	if err := json.NewDecoder(r.Body).Decode(&credsBody); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := credentials.StoreCredentials(keyString, credsBody); err != nil {
		logger.Errorf("Failed to store credentials: %v", err)
		http.Error(w, "Failed to store credentials", http.StatusInternalServerError)
		return
	}

	response := map[string]string{
		"access_key": keyString,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
