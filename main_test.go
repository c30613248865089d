package main

import (
	"testing"
)

func TestParseArgsRecognizedFlags(t *testing.T) {
	opts := parseArgs([]string{"-i", "gs://bucket/run1", "-s", "cam0", "-o", "gs://bucket/out/timelapse.mp4"})

	if opts.input != "gs://bucket/run1" {
		t.Errorf("input = %q, want gs://bucket/run1", opts.input)
	}
	if opts.session != "cam0" {
		t.Errorf("session = %q, want cam0", opts.session)
	}
	if opts.output != "gs://bucket/out/timelapse.mp4" {
		t.Errorf("output = %q, want gs://bucket/out/timelapse.mp4", opts.output)
	}
	if opts.serve {
		t.Error("serve should default to false")
	}
}

func TestParseArgsUnknownFlagDoesNotAbort(t *testing.T) {
	// An unrecognized flag produces a usage message but the run continues
	// and recognized flags still take effect.
	opts := parseArgs([]string{"-x", "-i", "gs://bucket/run1", "-bogus", "-s", "cam0", "-o", "out.mp4"})

	if opts.input != "gs://bucket/run1" {
		t.Errorf("input = %q, want gs://bucket/run1", opts.input)
	}
	if opts.session != "cam0" {
		t.Errorf("session = %q, want cam0", opts.session)
	}
	if opts.output != "out.mp4" {
		t.Errorf("output = %q, want out.mp4", opts.output)
	}
}

func TestParseArgsFramerate(t *testing.T) {
	opts := parseArgs([]string{"-fps", "30"})
	if opts.framerate != 30 {
		t.Errorf("framerate = %d, want 30", opts.framerate)
	}

	opts = parseArgs([]string{"-fps", "abc"})
	if opts.framerate != 0 {
		t.Errorf("framerate = %d, want 0 for invalid value", opts.framerate)
	}
}

func TestParseArgsModes(t *testing.T) {
	opts := parseArgs([]string{"-serve", "-quiet", "-log", "/tmp/fl.log"})
	if !opts.serve {
		t.Error("serve flag not set")
	}
	if !opts.quiet {
		t.Error("quiet flag not set")
	}
	if opts.logFile != "/tmp/fl.log" {
		t.Errorf("logFile = %q, want /tmp/fl.log", opts.logFile)
	}
}

func TestParseArgsMissingValue(t *testing.T) {
	// A flag at the end of the argument list with no value must not panic.
	opts := parseArgs([]string{"-i"})
	if opts.input != "" {
		t.Errorf("input = %q, want empty", opts.input)
	}
}
