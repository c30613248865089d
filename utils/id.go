package utils

import (
	"crypto/rand"
	"encoding/hex"
)

const jobIDLength = 12
const jobIDCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateJobID returns a short random identifier used to name render jobs
// and their workspace directories. Lowercase alphanumeric so the id is safe
// in filesystem paths and URLs.
func GenerateJobID() (string, error) {
	raw := make([]byte, jobIDLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	id := make([]byte, jobIDLength)
	for i, b := range raw {
		id[i] = jobIDCharset[int(b)%len(jobIDCharset)]
	}
	return string(id), nil
}

// GenerateRandomHex returns n random bytes hex-encoded. Used for credential
// access keys.
func GenerateRandomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
