package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	logger.Out = output(os.Getenv("ENV"), os.Getenv("LOG_TO_FILE") == "true")
	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	logger.SetLevel(level(os.Getenv("LOG_LEVEL")))
}

// output picks stdout unless file logging was requested. Files go to
// logs/<date><env>.log under the working directory.
func output(env string, toFile bool) io.Writer {
	if !toFile {
		return os.Stdout
	}
	cwd, err := os.Getwd()
	if err != nil {
		log.Warnf("Failed get current working directory: %v, falling back to stdout", err)
		return os.Stdout
	}
	logsDir := filepath.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		log.Warnf("Failed to create logs directory %s: %v, falling back to stdout", logsDir, err)
		return os.Stdout
	}
	filePath := filepath.Join(logsDir, fmt.Sprintf("%s%s.log", time.Now().Format("2006-01-02"), env))
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		log.Warnf("Failed to open log file %s: %v, falling back to stdout", filePath, err)
		return os.Stdout
	}
	return f
}

func level(raw string) log.Level {
	if raw == "" {
		return log.DebugLevel
	}
	lvl, err := log.ParseLevel(raw)
	if err != nil {
		return log.DebugLevel
	}
	return lvl
}

// SetOutput redirects the logger, mainly for tests and the status command.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)

	functionObject := runtime.FuncForPC(function)
	entry := logger.WithFields(log.Fields{
		"function": functionObject.Name(),
		"file":     file,
		"line":     line,
	})

	return entry
}
