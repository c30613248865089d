package storagebackends

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"framelapse/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// newS3Client builds a client from static credentials in accessInfo
// (accessKey/secretKey/region). Region defaults to us-east-1.
func newS3Client(accessInfo map[string]string) *s3.Client {
	region := accessInfo["region"]
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{Region: region}
	if accessInfo["accessKey"] != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(
			accessInfo["accessKey"], accessInfo["secretKey"], "")
	}
	if endpoint := accessInfo["endpoint"]; endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}
	return s3.New(opts)
}

// DownloadFromS3 recursively fetches every object under the source prefix
// into destDir. Per-object parallelism is delegated to the transfer manager.
func DownloadFromS3(ctx context.Context, accessInfo map[string]string, src Location, destDir string) error {
	client := newS3Client(accessInfo)
	downloader := manager.NewDownloader(client)

	prefix := prefixDir(src.Path)
	count := 0

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(src.Bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list objects under s3://%s/%s: %w", src.Bucket, prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue // directory placeholder
			}

			rel := strings.TrimPrefix(key, prefix)
			localPath := filepath.Join(destDir, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
				return fmt.Errorf("mkdir for %s: %w", localPath, err)
			}

			f, err := os.Create(localPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", localPath, err)
			}

			_, err = downloader.Download(ctx, f, &s3.GetObjectInput{
				Bucket: aws.String(src.Bucket),
				Key:    aws.String(key),
			})
			f.Close()
			if err != nil {
				return fmt.Errorf("download s3://%s/%s: %w", src.Bucket, key, err)
			}
			count++
		}
	}

	logger.Infof("Downloaded %d objects from s3://%s/%s", count, src.Bucket, prefix)
	return nil
}

// UploadToS3 uploads a local file to the destination object via the transfer
// manager.
func UploadToS3(ctx context.Context, accessInfo map[string]string, localPath string, dest Location) error {
	client := newS3Client(accessInfo)
	uploader := manager.NewUploader(client)

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(dest.Bucket),
		Key:    aws.String(dest.Path),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", dest.Path, dest.Bucket, err)
	}

	logger.Infof("Successfully uploaded object '%s' to bucket '%s'", dest.Path, dest.Bucket)
	return nil
}
