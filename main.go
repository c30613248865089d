package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"framelapse/config"
	"framelapse/credentials"
	"framelapse/failures"
	"framelapse/job"
	"framelapse/logger"
	"framelapse/models"
	"framelapse/render"
	"framelapse/routes"
	"framelapse/success"
	"framelapse/transcoder"
)

const usage = "usage: framelapse -i <input> -s <session> -o <output> [-fps <n>] [-log <file>] [-quiet] | -serve"

type cliOptions struct {
	input     string
	session   string
	output    string
	framerate int
	serve     bool
	logFile   string
	quiet     bool
}

// parseArgs scans the argument list by hand. Unrecognized flags print the
// usage line and are skipped; the run continues with whatever recognized
// flags were given.
func parseArgs(args []string) cliOptions {
	var opts cliOptions

	takeValue := func(i int) (string, int) {
		if i+1 < len(args) {
			return args[i+1], i + 1
		}
		return "", i
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-i":
			opts.input, i = takeValue(i)
		case "-s":
			opts.session, i = takeValue(i)
		case "-o":
			opts.output, i = takeValue(i)
		case "-fps":
			var v string
			v, i = takeValue(i)
			if n, err := strconv.Atoi(v); err == nil {
				opts.framerate = n
			} else {
				fmt.Fprintf(os.Stderr, "invalid -fps value %q\n", v)
			}
		case "-log":
			opts.logFile, i = takeValue(i)
		case "-serve":
			opts.serve = true
		case "-quiet":
			opts.quiet = true
		default:
			fmt.Fprintln(os.Stderr, usage)
		}
	}

	return opts
}

func main() {
	opts := parseArgs(os.Args[1:])

	if opts.logFile != "" {
		if err := logger.Init(opts.logFile, !opts.quiet); err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
			os.Exit(1)
		}
		defer logger.Close()
	}
	if opts.quiet {
		logger.SetLevel(logger.WARN)
	}

	logger.Debug("Registering transcoders")
	transcoder.RegisterDefaults()

	if opts.serve {
		runServer()
		return
	}

	if opts.input == "" || opts.session == "" || opts.output == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	// Interrupt signals cancel the pipeline; the workspace cleanup runs on
	// that path too.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderJob := models.RenderJob{
		Input:     opts.input,
		Session:   opts.session,
		Output:    opts.output,
		Framerate: opts.framerate,
	}

	if _, err := render.Render(ctx, renderJob, nil); err != nil {
		logger.Errorf("Render failed: %v", err)
		os.Exit(1)
	}
}

func runServer() {
	logger.Info("Starting framelapse server initialization")

	logger.Debug("Initializing credentials database")
	if err := credentials.OpenDB(config.GetCredentialsDBPath()); err != nil {
		logger.Fatalf("Failed to initialize credentials store: %v", err)
	}
	defer credentials.CloseDB()

	logger.Debug("Initializing failures database")
	if err := failures.Init(config.GetFailuresDBPath()); err != nil {
		logger.Fatalf("Failed to initialize failure store: %v", err)
	}
	defer failures.Close()

	logger.Debug("Initializing success database")
	if err := success.Init(config.GetSuccessDBPath()); err != nil {
		logger.Fatalf("Failed to initialize success store: %v", err)
	}
	defer success.Close()

	// Requeue jobs left over from a previous run
	logger.Info("Scanning for pending jobs on startup")
	if err := job.ScanForPendingJobs(); err != nil {
		logger.Errorf("Failed to scan for pending jobs: %v", err)
		// Don't exit - continue with server startup
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupRoutine(ctx)

	logger.Info("Starting job processing routine")
	go job.ProcessPendingJobs()

	logger.Info("Registering HTTP routes")
	http.HandleFunc("/render", routes.RenderHandler)
	http.HandleFunc("/health", routes.HealthHandler)
	http.HandleFunc("/version", routes.VersionHandler)
	http.HandleFunc("/status", routes.JobStatusHandler)
	http.HandleFunc("/cancel", routes.CancelJobHandler)
	http.HandleFunc("/credentials", routes.RegisterCredentialsHandler)
	http.HandleFunc("/failures", routes.FailureQueryHandler)
	http.HandleFunc("/failures/list", routes.FailureListHandler)
	http.HandleFunc("/success", routes.SuccessQueryHandler)
	http.HandleFunc("/success/list", routes.SuccessListHandler)

	addr := config.GetListenAddr()
	logger.Infof("framelapse server starting on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}

// cleanupRoutine periodically prunes old success and failure records
func cleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup routine stopped due to context cancellation")
			return
		case <-ticker.C:
			logger.Info("Running scheduled cleanup of old records")
			maxAge := 30 * 24 * time.Hour

			if err := success.CleanupOldRecords(maxAge); err != nil {
				logger.Errorf("Failed to cleanup old success records: %v", err)
			}
			if err := failures.CleanupOldRecords(maxAge); err != nil {
				logger.Errorf("Failed to cleanup old failure records: %v", err)
			}
		}
	}
}
