package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const (
	logDir      = "logs"
	logFileName = "vi-danmaku.log"
	maxLogSize  = 10 * 1024 * 1024

	// debugVerbosity maps to commonlog's debug level
	debugVerbosity = 2
)

// setupLogging routes logs to logs/vi-danmaku.log when debug is set, otherwise silences them
// The terminal belongs to tcell so logs never go to stdout or stderr
// Returns the log file path, empty when disabled
func setupLogging(debug bool) (string, error) {
	if !debug {
		commonlog.SetMaxLevel(commonlog.None)
		return "", nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		commonlog.SetMaxLevel(commonlog.None)
		return "", fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("vi-danmaku-%s.log", time.Now().Format("20060102-150405")))
		if err := os.Rename(logPath, rotated); err != nil {
			commonlog.SetMaxLevel(commonlog.None)
			return "", fmt.Errorf("rotating log file: %w", err)
		}
	}

	// Touch so the file exists before the backend opens it lazily
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		commonlog.SetMaxLevel(commonlog.None)
		return "", fmt.Errorf("opening log file: %w", err)
	}
	f.Close()

	commonlog.Configure(debugVerbosity, &logPath)
	return logPath, nil
}
