package storagebackends

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"framelapse/logger"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// gcsDownloadWorkers bounds the parallel object fetches, the multi-stream
// transfer mode for GCS sources.
const gcsDownloadWorkers = 8

// newGCSClient creates a storage client, using a base64-encoded service
// account key from accessInfo["credentialsJSON"] when present and ambient
// application default credentials otherwise.
func newGCSClient(ctx context.Context, accessInfo map[string]string) (*storage.Client, error) {
	if encoded := accessInfo["credentialsJSON"]; encoded != "" {
		credentialsJSON, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode credentialsJSON: %w", err)
		}
		return storage.NewClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	}
	return storage.NewClient(ctx)
}

// DownloadFromGCS recursively fetches every object under the source prefix
// into destDir, keeping the layout relative to the prefix.
func DownloadFromGCS(ctx context.Context, accessInfo map[string]string, src Location, destDir string) error {
	client, err := newGCSClient(ctx, accessInfo)
	if err != nil {
		return fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	prefix := prefixDir(src.Path)
	bucket := client.Bucket(src.Bucket)

	var names []string
	it := bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("list objects under gs://%s/%s: %w", src.Bucket, prefix, err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue // directory placeholder
		}
		names = append(names, attrs.Name)
	}

	logger.Debugf("Downloading %d objects from gs://%s/%s", len(names), src.Bucket, prefix)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(gcsDownloadWorkers)
	for _, name := range names {
		g.Go(func() error {
			rel := strings.TrimPrefix(name, prefix)
			localPath := filepath.Join(destDir, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
				return fmt.Errorf("mkdir for %s: %w", localPath, err)
			}

			rc, err := bucket.Object(name).NewReader(gctx)
			if err != nil {
				return fmt.Errorf("open gs://%s/%s: %w", src.Bucket, name, err)
			}
			defer rc.Close()

			f, err := os.Create(localPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", localPath, err)
			}
			defer f.Close()

			if _, err := io.Copy(f, rc); err != nil {
				return fmt.Errorf("copy gs://%s/%s: %w", src.Bucket, name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Infof("Downloaded %d objects from gs://%s/%s", len(names), src.Bucket, prefix)
	return nil
}

// UploadToGCS streams a local file to the destination object.
func UploadToGCS(ctx context.Context, accessInfo map[string]string, localPath string, dest Location) error {
	client, err := newGCSClient(ctx, accessInfo)
	if err != nil {
		return fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	wc := client.Bucket(dest.Bucket).Object(dest.Path).NewWriter(ctx)
	if _, err := io.Copy(wc, f); err != nil {
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Infof("Successfully uploaded object '%s' to bucket '%s'", dest.Path, dest.Bucket)
	return nil
}
