package failures

import (
	"encoding/json"
	"fmt"
	"time"

	pebble "github.com/cockroachdb/pebble"
)

// FailureRecord represents a failed render
type FailureRecord struct {
	JobID     string    `json:"job_id"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
	JobData   string    `json:"job_data"` // JSON string of the render job
}

var db *pebble.DB

// Init initializes the failure store
func Init(dbPath string) error {
	var err error
	db, err = pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("failed to open failure store: %w", err)
	}
	return nil
}

// Close closes the failure store. The handle is cleared so later calls take
// the not-initialized error path instead of touching a closed DB.
func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// StoreFailure records a failed render
func StoreFailure(jobID string, failure error, jobData interface{}) error {
	if db == nil {
		return fmt.Errorf("failure store not initialized")
	}

	jobJSON, jsonErr := json.Marshal(jobData)
	if jsonErr != nil {
		jobJSON = []byte(fmt.Sprintf("failed to marshal job data: %v", jsonErr))
	}

	errMsg := "unknown error"
	if failure != nil {
		errMsg = failure.Error()
	}

	record := FailureRecord{
		JobID:     jobID,
		Timestamp: time.Now(),
		Error:     errMsg,
		JobData:   string(jobJSON),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal failure record: %w", err)
	}

	return db.Set([]byte(jobID), data, pebble.Sync)
}

// GetFailure retrieves a failure record by job id; nil when not found
func GetFailure(jobID string) (*FailureRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("failure store not initialized")
	}

	data, closer, err := db.Get([]byte(jobID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get failure: %w", err)
	}
	defer closer.Close()

	var record FailureRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal failure record: %w", err)
	}

	return &record, nil
}

// DeleteFailure removes a failure record
func DeleteFailure(jobID string) error {
	if db == nil {
		return fmt.Errorf("failure store not initialized")
	}
	return db.Delete([]byte(jobID), pebble.Sync)
}

// ListFailures returns all failure records (for admin purposes)
func ListFailures() ([]FailureRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("failure store not initialized")
	}

	var records []FailureRecord
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var record FailureRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue // Skip invalid records
		}
		records = append(records, record)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}

	return records, nil
}

// CleanupOldRecords removes failure records older than the specified duration
func CleanupOldRecords(maxAge time.Duration) error {
	if db == nil {
		return fmt.Errorf("failure store not initialized")
	}

	cutoff := time.Now().Add(-maxAge)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()

	var keysToDelete [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var record FailureRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue
		}
		if record.Timestamp.Before(cutoff) {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			keysToDelete = append(keysToDelete, key)
		}
	}

	for _, key := range keysToDelete {
		if err := db.Delete(key, pebble.Sync); err != nil {
			return fmt.Errorf("failed to delete old failure record: %w", err)
		}
	}

	return nil
}

// CheckHealth performs a basic health check on the failures database
func CheckHealth() error {
	if db == nil {
		return fmt.Errorf("failures database not initialized")
	}

	_, closer, err := db.Get([]byte("__health_check__"))
	if err != nil && err != pebble.ErrNotFound {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if closer != nil {
		closer.Close()
	}
	return nil
}
