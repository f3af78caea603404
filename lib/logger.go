package lib

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Logger writes to STDOUT, or to the given log file when one is configured.
// A path without an extension gets the current date appended.
func Logger(logFilePath string) zerolog.Logger {
	target := os.Stdout

	if logFilePath != "" {
		path := logFilePath
		if filepath.Ext(logFilePath) == "" {
			path = logFilePath + time.Now().Format("-2006-01-02") + ".log"
		}
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
		if err != nil {
			panic(err)
		}
		target = file
	}

	return zerolog.New(target).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}
