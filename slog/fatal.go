package slog

import (
	"context"
	"log/slog"
	"os"
)

// Replaced in tests
var (
	osExit = os.Exit
	exitFn = osExit
)

// FatalError logs an error at the critical level and terminates the application with exit code 1.
func FatalError(log *slog.Logger, msg string, err error) {
	if log == nil {
		log = slog.Default()
	}
	log.Log(context.Background(), LevelCritical.Slog(), msg, slog.Any("error", err))
	exitFn(1)
}
