package log

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// Debug mode configuration. Enable by setting TUISTORY_DEBUG=1.
var (
	DebugEnabled bool
	DebugLog     *log.Logger
	debugLogFile *os.File
)

var debugLogFileName = filepath.Join(os.TempDir(), "tuistory-debug.log")

// InitDebug initializes debug logging if TUISTORY_DEBUG=1 is set.
// Called by Initialize.
func InitDebug() {
	if os.Getenv("TUISTORY_DEBUG") != "1" {
		// No-op logger so call sites never need a nil check.
		DebugLog = log.New(io.Discard, "", 0)
		return
	}

	DebugEnabled = true

	f, err := os.OpenFile(debugLogFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		if ErrorLog != nil {
			ErrorLog.Printf("could not open debug log file: %s", err)
		}
		DebugLog = log.New(io.Discard, "", 0)
		return
	}

	DebugLog = log.New(f, "DEBUG:", log.Ldate|log.Ltime|log.Lmicroseconds)
	debugLogFile = f

	DebugLog.Println("Debug mode enabled")
	DebugLog.Printf("Debug log: %s", debugLogFileName)
}

// CloseDebug closes the debug log file.
func CloseDebug() {
	if debugLogFile != nil {
		_ = debugLogFile.Close()
	}
}

// Debug logs a debug message if debug mode is enabled.
func Debug(format string, v ...interface{}) {
	if DebugEnabled && DebugLog != nil {
		DebugLog.Printf(format, v...)
	}
}

// DataTrace logs PTY data-path events (chunk arrival, idle fires).
func DataTrace(format string, v ...interface{}) {
	if DebugEnabled && DebugLog != nil {
		DebugLog.Printf("[DATA] "+format, v...)
	}
}

// InputTrace logs input encoding events (keys, mouse).
func InputTrace(format string, v ...interface{}) {
	if DebugEnabled && DebugLog != nil {
		DebugLog.Printf("[INPUT] "+format, v...)
	}
}
