package transcoder

import (
	"context"
	"fmt"
	"os/exec"

	"framelapse/config"
	"framelapse/logger"
)

// BuildMP4Args constructs the ffmpeg argv for stitching a glob of frames into
// an MP4. Glob expansion inside ffmpeg is lexicographic, which fixes the
// frame order for timestamp-named files.
func BuildMP4Args(pattern, output string, opts Options) []string {
	fps := opts.Framerate
	if fps <= 0 {
		fps = config.DefaultFramerate
	}
	codec := opts.Codec
	if codec == "" {
		codec = "libx264"
	}
	pixFmt := opts.PixelFormat
	if pixFmt == "" {
		pixFmt = "yuv420p"
	}

	return []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", fps),
		"-pattern_type", "glob",
		"-i", pattern,
		"-c:v", codec,
		"-pix_fmt", pixFmt,
		output,
	}
}

// TranscodeMP4 runs ffmpeg over the frame glob. ffmpeg's output is folded
// into the returned error so a failed stage carries the tool's diagnostics
// (e.g. no frames matched the glob).
func TranscodeMP4(ctx context.Context, pattern, output string, opts Options) error {
	args := BuildMP4Args(pattern, output, opts)

	logger.Debugf("Running ffmpeg %v", args)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w\noutput:\n%s", err, string(out))
	}

	logger.Infof("Transcode finished: %s", output)
	return nil
}
