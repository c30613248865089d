package config

import (
	"os"
	"path/filepath"
)

// SHARED_JWT_SECRET signs and verifies render submission tokens.
// Configurable via FRAMELAPSE_JWT_SECRET; the default is only suitable for
// local development.
var SHARED_JWT_SECRET = getJWTSecret()

func getJWTSecret() string {
	if secret := os.Getenv("FRAMELAPSE_JWT_SECRET"); secret != "" {
		return secret
	}
	return "framelapse-dev-secret-do-not-use-in-production"
}

// GetDataDir returns the directory where framelapse stores its databases.
// Priority: FRAMELAPSE_DATA_DIR environment variable > "./data" default.
// Checked at runtime so tests and deployments can redirect it.
func GetDataDir() string {
	if dir := os.Getenv("FRAMELAPSE_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// GetCredentialsDBPath returns the full path to the credentials database.
// The credentials database stores named storage backend credential sets.
// Path: {DATA_DIR}/credentials.db
func GetCredentialsDBPath() string {
	return filepath.Join(GetDataDir(), "credentials.db")
}

// GetFailuresDBPath returns the full path to the failures database.
// The failures database tracks render jobs that failed.
// Path: {DATA_DIR}/failures.db
func GetFailuresDBPath() string {
	return filepath.Join(GetDataDir(), "failures.db")
}

// GetSuccessDBPath returns the full path to the success database.
// The success database tracks completed render jobs.
// Path: {DATA_DIR}/success.db
func GetSuccessDBPath() string {
	return filepath.Join(GetDataDir(), "success.db")
}

// GetListenAddr returns the address the HTTP server binds to in serve mode.
// Configurable via FRAMELAPSE_LISTEN; defaults to ":8080".
func GetListenAddr() string {
	if addr := os.Getenv("FRAMELAPSE_LISTEN"); addr != "" {
		return addr
	}
	return ":8080"
}

// DefaultFramerate is the output framerate used when a render job does not
// specify one.
const DefaultFramerate = 24
