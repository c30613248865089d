package transcoder

import (
	"context"
	"os/exec"

	"framelapse/logger"
)

// TranscodeFunc stitches the frames matched by pattern into the output video.
type TranscodeFunc func(ctx context.Context, pattern, output string, opts Options) error

// Options control the transcode step.
type Options struct {
	Framerate   int
	Codec       string // defaults to libx264
	PixelFormat string // defaults to yuv420p
}

// Registry maps a container format name to its transcoder function
var Registry = map[string]TranscodeFunc{}

// Register adds a transcoder if the underlying command exists, logs status
func Register(format string, cmdName string, fn TranscodeFunc) {
	if _, err := exec.LookPath(cmdName); err != nil {
		logger.Warnf("transcoder [%s] skipped: command '%s' not found in PATH", format, cmdName)
		return
	}
	Registry[format] = fn
	logger.Debugf("transcoder [%s] registered (command: %s)", format, cmdName)
}

// Get looks up a transcoder by format
func Get(format string) (TranscodeFunc, bool) {
	fn, ok := Registry[format]
	return fn, ok
}

// RegisterDefaults registers the stock transcoders.
func RegisterDefaults() {
	Register("mp4", "ffmpeg", TranscodeMP4)
}
