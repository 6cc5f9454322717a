// Package log provides file-backed loggers for tuistory. Terminal drivers
// own the PTY and often the screen, so nothing may be written to stdout or
// stderr outside the CLI surface; everything else goes to a log file.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

var logFileName = filepath.Join(os.TempDir(), "tuistory.log")

var (
	InfoLog    *log.Logger
	WarningLog *log.Logger
	ErrorLog   *log.Logger

	logFile  *os.File
	everUsed bool
)

// Library embedders may never call Initialize; loggers still have to be
// safe to use.
func init() {
	discard := log.New(io.Discard, "", 0)
	InfoLog = discard
	WarningLog = discard
	ErrorLog = discard
	DebugLog = discard
}

// Initialize sets up the loggers. It should be called once at startup.
// Loggers fall back to io.Discard if the log file cannot be opened.
func Initialize() {
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		InfoLog = log.New(io.Discard, "", 0)
		WarningLog = log.New(io.Discard, "", 0)
		ErrorLog = log.New(io.Discard, "", 0)
		return
	}

	logFile = f
	InfoLog = log.New(&usageWriter{w: f}, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarningLog = log.New(&usageWriter{w: f}, "WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(&usageWriter{w: f}, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	InitDebug()
}

// Close closes the log file and removes it if it was never written to.
func Close() {
	CloseDebug()
	if logFile == nil {
		return
	}
	_ = logFile.Close()
	if !everUsed {
		_ = os.Remove(logFileName)
	} else {
		fmt.Println("wrote logs to " + logFileName)
	}
}

// usageWriter tracks whether anything was ever logged so Close can remove
// an empty log file instead of leaving it behind.
type usageWriter struct {
	w io.Writer
}

func (u *usageWriter) Write(p []byte) (int, error) {
	everUsed = true
	return u.w.Write(p)
}
