package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/italypaleale/faultkit/config"
	"github.com/italypaleale/faultkit/internal/cli"
	slogkit "github.com/italypaleale/faultkit/slog"
)

// Set at build time with -ldflags
var version = "dev"

func main() {
	err := cli.NewRoot(version).ExecuteContext(context.Background())
	if err != nil {
		var ce *config.ConfigError
		if errors.As(err, &ce) {
			ce.LogFatal(slog.Default())
		}
		slogkit.FatalError(slog.Default(), "Command failed", err)
	}
}
