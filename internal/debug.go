// Package internal holds the checker's debug log. Comparator diagnostics,
// fetch status codes and state file problems all go through DebugPrint.
package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Debug gates DebugPrint. DEBUG_MODE=true|1|yes|y or --debug turns it on.
var Debug bool

var (
	// LogWriter receives debug output: stderr, or the file named by
	// OTA_CHECKER_LOG_FILE.
	LogWriter io.Writer = os.Stderr

	// LogFile is the open OTA_CHECKER_LOG_FILE, nil when logging to stderr.
	LogFile *os.File
)

// InitDebug reads DEBUG_MODE and OTA_CHECKER_LOG_FILE. A log file that
// cannot be opened leaves output on stderr.
func InitDebug() {
	switch strings.ToLower(os.Getenv("DEBUG_MODE")) {
	case "true", "1", "yes", "y":
		Debug = true
	}

	path := os.Getenv("OTA_CHECKER_LOG_FILE")
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARNING] Could not open log file %s: %v, falling back to stderr\n", path, err)
		return
	}
	LogWriter = f
	LogFile = f
}

// CloseDebug closes the log file, if any, and points LogWriter back at stderr.
func CloseDebug() {
	if LogFile == nil {
		return
	}
	LogFile.Close()
	LogFile = nil
	LogWriter = os.Stderr
}

func timestamp() string {
	return time.Now().Format("2006-01-02T15:04:05.000Z07:00")
}

// DebugPrint writes a timestamped line to LogWriter when Debug is set.
func DebugPrint(format string, args ...interface{}) {
	if Debug {
		fmt.Fprintf(LogWriter, "%s Debug: "+format+"\n", append([]interface{}{timestamp()}, args...)...)
	}
}

// LogError records the error that ended a command in the log file. It is
// written whether or not Debug is set, so a log file collected from a
// scheduled check always says why it failed. Without a log file it does
// nothing; the terminal copy is the caller's.
func LogError(command string, err error) {
	if LogFile == nil || err == nil {
		return
	}
	fmt.Fprintf(LogWriter, "%s Error: %s: %v\n", timestamp(), command, err)
}
