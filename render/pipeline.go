package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"framelapse/logger"
	"framelapse/models"
	storagebackends "framelapse/storageBackends"
	"framelapse/transcoder"
)

// OutputFilename is the fixed name of the stitched video inside the
// workspace.
const OutputFilename = "timelapse.mp4"

// Render runs the full pipeline for one job: copy the input frames into a
// scoped workspace, stitch <workspace>/<session>/*.jpg into a video, upload
// it to the job's output location. access maps a backend scheme to its
// credential set; schemes without an entry use ambient SDK credentials.
//
// Every stage's error aborts the run. The workspace is removed on all exit
// paths, including cancellation.
func Render(ctx context.Context, job models.RenderJob, access map[string]map[string]string) (int64, error) {
	src, err := storagebackends.ParseLocation(job.Input)
	if err != nil {
		return 0, fmt.Errorf("invalid input location: %w", err)
	}
	dest, err := storagebackends.ParseLocation(job.Output)
	if err != nil {
		return 0, fmt.Errorf("invalid output location: %w", err)
	}
	if job.Session == "" {
		return 0, fmt.Errorf("missing session")
	}

	ws, err := NewWorkspace()
	if err != nil {
		return 0, err
	}
	defer ws.Remove()

	logger.Infof("Rendering session %s from %s into %s (workspace %s)",
		job.Session, job.Input, job.Output, ws.Dir)

	if err := storagebackends.DownloadTree(ctx, access[src.Scheme], src, ws.Dir); err != nil {
		return 0, fmt.Errorf("download stage: %w", err)
	}

	stitch, ok := transcoder.Get("mp4")
	if !ok {
		return 0, fmt.Errorf("transcode stage: no mp4 transcoder available (is ffmpeg installed?)")
	}

	pattern := filepath.Join(ws.Dir, job.Session, "*.jpg")
	videoPath := filepath.Join(ws.Dir, OutputFilename)
	opts := transcoder.Options{Framerate: job.Framerate}
	if err := stitch(ctx, pattern, videoPath, opts); err != nil {
		return 0, fmt.Errorf("transcode stage: %w", err)
	}

	info, err := os.Stat(videoPath)
	if err != nil {
		return 0, fmt.Errorf("transcode stage: no video produced: %w", err)
	}

	if err := storagebackends.UploadFile(ctx, access[dest.Scheme], videoPath, dest); err != nil {
		return 0, fmt.Errorf("upload stage: %w", err)
	}

	logger.Infof("Render complete: %s (%d bytes)", job.Output, info.Size())
	return info.Size(), nil
}
