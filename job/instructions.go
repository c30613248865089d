package job

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"framelapse/models"
)

// jobDirPrefix namespaces framelapse job directories under the system temp
// root so the startup rescan does not touch unrelated directories.
const jobDirPrefix = "framelapse-job-"

// RenderInstructions is the durable form of a queued render, written as
// instructions.json inside the job directory so jobs survive restarts.
type RenderInstructions struct {
	JobID string           `json:"job_id"`
	Job   models.RenderJob `json:"job"`
}

// JobDir returns the directory path for a job id.
func JobDir(jobID string) string {
	return filepath.Join(os.TempDir(), jobDirPrefix+jobID)
}

// jobIDFromDir recovers the job id from a job directory path.
func jobIDFromDir(dir string) string {
	return strings.TrimPrefix(filepath.Base(dir), jobDirPrefix)
}

// WriteInstructions writes the instructions to instructions.json in the given
// directory.
func WriteInstructions(dir string, instr RenderInstructions) error {
	path := filepath.Join(dir, "instructions.json")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create instructions file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(instr); err != nil {
		return fmt.Errorf("failed to encode instructions: %w", err)
	}
	return nil
}

// ReadInstructions reads instructions.json from the given directory.
func ReadInstructions(dir string) (RenderInstructions, error) {
	path := filepath.Join(dir, "instructions.json")
	file, err := os.Open(path)
	if err != nil {
		return RenderInstructions{}, fmt.Errorf("failed to open instructions file: %w", err)
	}
	defer file.Close()

	var instr RenderInstructions
	if err := json.NewDecoder(file).Decode(&instr); err != nil {
		return RenderInstructions{}, fmt.Errorf("failed to decode instructions: %w", err)
	}
	return instr, nil
}
