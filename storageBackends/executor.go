package storagebackends

import (
	"context"
	"fmt"
)

// DownloadTree recursively copies everything under src into destDir,
// preserving the relative layout below the source prefix. The parallelism of
// each backend's own transfer mode applies; callers see a single blocking
// call.
func DownloadTree(ctx context.Context, accessInfo map[string]string, src Location, destDir string) error {
	switch src.Scheme {
	case "gcs":
		if err := DownloadFromGCS(ctx, accessInfo, src, destDir); err != nil {
			return fmt.Errorf("failed to download from GCS: %w", err)
		}
	case "s3":
		if err := DownloadFromS3(ctx, accessInfo, src, destDir); err != nil {
			return fmt.Errorf("failed to download from S3: %w", err)
		}
	case "sftp":
		if err := DownloadFromSFTP(ctx, accessInfo, src, destDir); err != nil {
			return fmt.Errorf("failed to download from SFTP: %w", err)
		}
	case "local":
		if err := CopyTreeFromLocal(ctx, src.Path, destDir); err != nil {
			return fmt.Errorf("failed to copy from local path: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend type: %s", src.Scheme)
	}
	return nil
}

// UploadFile copies a single local file to the destination location.
func UploadFile(ctx context.Context, accessInfo map[string]string, localPath string, dest Location) error {
	switch dest.Scheme {
	case "gcs":
		if err := UploadToGCS(ctx, accessInfo, localPath, dest); err != nil {
			return fmt.Errorf("failed to upload to GCS: %w", err)
		}
	case "s3":
		if err := UploadToS3(ctx, accessInfo, localPath, dest); err != nil {
			return fmt.Errorf("failed to upload to S3: %w", err)
		}
	case "sftp":
		if err := UploadToSFTP(ctx, accessInfo, localPath, dest); err != nil {
			return fmt.Errorf("failed to upload to SFTP: %w", err)
		}
	case "local":
		if err := CopyFileToLocal(ctx, localPath, dest.Path); err != nil {
			return fmt.Errorf("failed to copy to local path: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend type: %s", dest.Scheme)
	}
	return nil
}
