package storagebackends

import (
	"fmt"
	"strings"
)

// Location is a parsed transfer endpoint. Bucket holds the GCS/S3 bucket or
// the SFTP host; Path is the object prefix, remote path, or local directory.
// SFTP port and user come from the credential set, not the URI.
type Location struct {
	Scheme string // "gcs", "s3", "sftp" or "local"
	Bucket string
	Path   string
}

// ParseLocation parses a gs://, s3:// or sftp:// URI. Anything without a
// recognized scheme is treated as a local filesystem path.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, fmt.Errorf("empty location")
	}

	var scheme string
	var rest string
	switch {
	case strings.HasPrefix(raw, "gs://"):
		scheme, rest = "gcs", strings.TrimPrefix(raw, "gs://")
	case strings.HasPrefix(raw, "s3://"):
		scheme, rest = "s3", strings.TrimPrefix(raw, "s3://")
	case strings.HasPrefix(raw, "sftp://"):
		scheme, rest = "sftp", strings.TrimPrefix(raw, "sftp://")
	default:
		if strings.Contains(raw, "://") {
			return Location{}, fmt.Errorf("unsupported scheme in %q", raw)
		}
		return Location{Scheme: "local", Path: raw}, nil
	}

	bucket, path, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("missing bucket or host in %q", raw)
	}

	return Location{Scheme: scheme, Bucket: bucket, Path: path}, nil
}

// String re-renders the location as a URI.
func (l Location) String() string {
	switch l.Scheme {
	case "gcs":
		return "gs://" + l.Bucket + "/" + l.Path
	case "s3":
		return "s3://" + l.Bucket + "/" + l.Path
	case "sftp":
		return "sftp://" + l.Bucket + "/" + l.Path
	default:
		return l.Path
	}
}

// prefixDir normalizes an object prefix so that listing matches only keys
// under the prefix directory ("run1" must not match "run10/...").
func prefixDir(prefix string) string {
	if prefix == "" {
		return ""
	}
	if strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}
