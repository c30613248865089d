package storagebackends

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local paths act as a storage backend too, mainly for tests and single-host
// runs where the frames already sit on disk.

// CopyTreeFromLocal recursively copies the contents of srcDir into destDir.
func CopyTreeFromLocal(ctx context.Context, srcDir, destDir string) error {
	return filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		return CopyFileToLocal(ctx, p, filepath.Join(destDir, rel))
	})
}

// CopyFileToLocal copies a single file, creating parent directories.
func CopyFileToLocal(ctx context.Context, srcPath, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", destPath, err)
	}

	return nil
}
