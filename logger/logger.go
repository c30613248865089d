package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// ANSI color per level; console output is colored, file output is not.
var levelColors = map[LogLevel]string{
	DEBUG: "\033[90m",
	INFO:  "\033[0m",
	WARN:  "\033[33m",
	ERROR: "\033[31m",
}

var levelTags = map[LogLevel]string{
	DEBUG: "[DEBUG] ",
	INFO:  "[INFO]  ",
	WARN:  "[WARN]  ",
	ERROR: "[ERROR] ",
}

const colorReset = "\033[0m"

type Logger struct {
	console  *log.Logger
	file     *log.Logger
	logFile  *os.File
	minLevel LogLevel
}

var (
	defaultLogger *Logger
	once          sync.Once
	mu            sync.Mutex
)

func ensureInitialized() {
	once.Do(func() {
		if defaultLogger == nil {
			defaultLogger = newLogger(os.Stdout, nil)
		}
	})
}

func newLogger(console io.Writer, file *os.File) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	l := &Logger{minLevel: DEBUG, logFile: file}
	if console != nil {
		l.console = log.New(console, "", flags)
	}
	if file != nil {
		l.file = log.New(file, "", flags)
	}
	return l
}

// Init configures the default logger. If filename is non-empty, messages are
// appended to that file without colors; if console is true, messages also go
// to stdout with colors. At least one destination must be enabled.
func Init(filename string, console bool) error {
	mu.Lock()
	defer mu.Unlock()

	if filename == "" && !console {
		return fmt.Errorf("no output destination specified")
	}

	if defaultLogger != nil && defaultLogger.logFile != nil {
		defaultLogger.logFile.Close()
	}

	var file *os.File
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
	}

	var consoleOut io.Writer
	if console {
		consoleOut = os.Stdout
	}

	defaultLogger = newLogger(consoleOut, file)
	return nil
}

// SetLevel sets the minimum level; messages below it are dropped.
func SetLevel(level LogLevel) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.minLevel = level
}

// Close closes the log file if one is open.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil && defaultLogger.logFile != nil {
		defaultLogger.logFile.Close()
		defaultLogger.logFile = nil
		defaultLogger.file = nil
	}
}

func (l *Logger) output(level LogLevel, msg string) {
	if level < l.minLevel {
		return
	}
	tag := levelTags[level]
	if l.console != nil {
		l.console.Output(4, levelColors[level]+tag+colorReset+msg)
	}
	if l.file != nil {
		l.file.Output(4, tag+msg)
	}
}

// write emits one message under mu, so Init, SetLevel and Close never race
// with logging from other goroutines.
func write(level LogLevel, msg string) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.output(level, msg)
}

func Debug(v ...interface{}) {
	write(DEBUG, fmt.Sprint(v...))
}

func Debugf(format string, v ...interface{}) {
	write(DEBUG, fmt.Sprintf(format, v...))
}

func Info(v ...interface{}) {
	write(INFO, fmt.Sprint(v...))
}

func Infof(format string, v ...interface{}) {
	write(INFO, fmt.Sprintf(format, v...))
}

func Warn(v ...interface{}) {
	write(WARN, fmt.Sprint(v...))
}

func Warnf(format string, v ...interface{}) {
	write(WARN, fmt.Sprintf(format, v...))
}

func Error(v ...interface{}) {
	write(ERROR, fmt.Sprint(v...))
}

func Errorf(format string, v ...interface{}) {
	write(ERROR, fmt.Sprintf(format, v...))
}

// Fatal logs at ERROR level and exits the program.
func Fatal(v ...interface{}) {
	write(ERROR, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs a formatted message at ERROR level and exits the program.
func Fatalf(format string, v ...interface{}) {
	write(ERROR, fmt.Sprintf(format, v...))
	os.Exit(1)
}
