package models

// RenderJob describes one timelapse render: where the frames live, which
// session subdirectory to stitch, and where the finished video goes.
type RenderJob struct {
	Input   string `json:"input"`   // remote source location (gs://, s3://, sftp:// or local path)
	Session string `json:"session"` // frame-set subdirectory under the input prefix
	Output  string `json:"output"`  // remote destination for the finished video

	Framerate int `json:"framerate,omitempty"` // output fps; 0 = server default

	CompletionCallback string            `json:"completionCallback,omitempty"` // callback URL
	CallbackHeaders    map[string]string `json:"callbackHeaders,omitempty"`

	// Each scheme ("gcs", "s3", "sftp"; "gs" is accepted for "gcs") maps to a
	// key in the credentials store (a random string handed out at
	// registration). Schemes without an entry fall back to ambient SDK
	// credentials.
	StorageKeys map[string]string `json:"storageKeys,omitempty"` // e.g., {"s3":"abc123", "sftp":"def456"}
}
