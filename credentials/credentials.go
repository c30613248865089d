package credentials

import (
	"encoding/json"
	"fmt"

	"framelapse/logger"
	taskqueue "framelapse/taskQueue"

	"github.com/cockroachdb/pebble"
)

// Named credential sets for storage backends. Each set is a flat
// map[string]string whose keys depend on the backend (bucket, accessKey,
// host, privateKey, ...). Render jobs reference sets by access key.

var db *taskqueue.DBQueue

// OpenDB opens the credentials store at the specified path.
func OpenDB(dbPath string) error {
	q, err := taskqueue.OpenQueue(dbPath)
	if err != nil {
		logger.Errorf("Failed to open credentials store: %v", err)
		return err
	}
	db = q
	return nil
}

// CloseDB closes the store and clears the handle.
func CloseDB() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// GetCredentials returns the credential set stored under the given key.
func GetCredentials(key string) (map[string]string, error) {
	if db == nil {
		return nil, fmt.Errorf("credentials store not initialized")
	}
	value, err := db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, fmt.Errorf("no credentials registered for key %s", key)
		}
		return nil, err
	}
	creds := make(map[string]string)
	if err := json.Unmarshal(value, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// StoreCredentials stores the credential set under the given key.
func StoreCredentials(key string, creds map[string]string) error {
	if db == nil {
		return fmt.Errorf("credentials store not initialized")
	}
	encoded, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return db.Add(key, encoded)
}

// DeleteCredentials removes the credential set for the given key.
func DeleteCredentials(key string) error {
	if db == nil {
		return fmt.Errorf("credentials store not initialized")
	}
	return db.Delete(key)
}
