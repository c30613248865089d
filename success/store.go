package success

import (
	"encoding/json"
	"fmt"
	"time"

	pebble "github.com/cockroachdb/pebble"
)

// RenderRecord represents a completed render
type RenderRecord struct {
	JobID      string    `json:"job_id"`
	Timestamp  time.Time `json:"timestamp"`
	JobData    string    `json:"job_data"`    // JSON string of the render job
	VideoBytes int64     `json:"video_bytes"` // Size of the uploaded video
}

var db *pebble.DB

// Init initializes the success store
func Init(dbPath string) error {
	var err error
	db, err = pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("failed to open success store: %w", err)
	}
	return nil
}

// Close closes the success store. The handle is cleared so later calls take
// the not-initialized error path instead of touching a closed DB.
func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// StoreSuccess records a completed render
func StoreSuccess(jobID string, jobData interface{}, videoBytes int64) error {
	if db == nil {
		return fmt.Errorf("success store not initialized")
	}

	jobJSON, jsonErr := json.Marshal(jobData)
	if jsonErr != nil {
		jobJSON = []byte(fmt.Sprintf("failed to marshal job data: %v", jsonErr))
	}

	record := RenderRecord{
		JobID:      jobID,
		Timestamp:  time.Now(),
		JobData:    string(jobJSON),
		VideoBytes: videoBytes,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal success record: %w", err)
	}

	return db.Set([]byte(jobID), data, pebble.Sync)
}

// GetSuccess retrieves a success record by job id; nil when not found
func GetSuccess(jobID string) (*RenderRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("success store not initialized")
	}

	data, closer, err := db.Get([]byte(jobID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	var record RenderRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal success record: %w", err)
	}

	return &record, nil
}

// DeleteSuccess removes a success record
func DeleteSuccess(jobID string) error {
	if db == nil {
		return fmt.Errorf("success store not initialized")
	}
	return db.Delete([]byte(jobID), pebble.Sync)
}

// ListSuccessRecords returns all success records (for admin/debugging)
func ListSuccessRecords() ([]RenderRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("success store not initialized")
	}

	var records []RenderRecord
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var record RenderRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue // Skip invalid records
		}
		records = append(records, record)
	}

	return records, nil
}

// CleanupOldRecords removes success records older than the specified duration
func CleanupOldRecords(maxAge time.Duration) error {
	if db == nil {
		return fmt.Errorf("success store not initialized")
	}

	cutoff := time.Now().Add(-maxAge)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()

	var keysToDelete [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var record RenderRecord
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
			return fmt.Errorf("failed to delete old success record: %w", err)
		}
	}

	return nil
}

// CheckHealth performs a basic health check on the success database
func CheckHealth() error {
	if db == nil {
		return fmt.Errorf("success database not initialized")
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
