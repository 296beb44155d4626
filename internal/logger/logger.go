// Package logger provides leveled printf-style logging for the whole
// process. Init wires the default logger once at startup; the package-level
// functions are no-ops until then.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents a logging severity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var (
	minLevel Level = InfoLevel
	std      *log.Logger
)

// Init initializes the default logger. Level is one of debug, info, warn,
// error; format "text" adds source file locations, anything else keeps the
// compact default.
func Init(level, format string) {
	minLevel = parseLevel(level)

	flags := log.LstdFlags | log.Lmicroseconds
	if strings.EqualFold(format, "text") {
		flags |= log.Lshortfile
	}
	std = log.New(os.Stderr, "", flags)
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	if std != nil {
		std.SetOutput(w)
	}
}

func parseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func output(l Level, tag, format string, args ...any) {
	if std == nil || l < minLevel {
		return
	}
	_ = std.Output(3, tag+fmt.Sprintf(format, args...))
}

func Debug(format string, args ...any) { output(DebugLevel, "[DEBUG] ", format, args...) }

func Info(format string, args ...any) { output(InfoLevel, "[INFO] ", format, args...) }

func Warn(format string, args ...any) { output(WarnLevel, "[WARN] ", format, args...) }

func Error(format string, args ...any) { output(ErrorLevel, "[ERROR] ", format, args...) }

// Fatal logs the message regardless of level and exits the process.
func Fatal(format string, args ...any) {
	if std != nil {
		_ = std.Output(2, "[FATAL] "+fmt.Sprintf(format, args...))
	} else {
		log.Printf("[FATAL] "+format, args...)
	}
	os.Exit(1)
}
