package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/italypaleale/faultkit/bootstrap"
	"github.com/italypaleale/faultkit/faults"
	"github.com/italypaleale/faultkit/severity"
)

// NewDemoCommand returns the command that sends one fault of each kind through the pipeline.
func NewDemoCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Send one fault of each kind through the configured pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			stack, err := bootstrap.Init(ctx, cfg, bootstrap.Options{
				AppName:    "faultkit",
				AppVersion: version,
				Writer:     cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}

			d := stack.Dispatcher
			fields := map[string]any{"user": "demo", "attempt": 3}

			// Runtime error
			d.Report(ctx, severity.E_USER_NOTICE, d.Interpolate("User {user} retried {attempt} times", fields), fields)
			d.Report(ctx, severity.E_USER_WARNING, "Disk usage is above the threshold", nil)

			// Uncaught exception
			<-d.Go(ctx, func(_ context.Context) {
				panic(errors.New("demo panic"))
			})
			d.HandleException(ctx, faults.UncaughtException{
				Payload: errors.New("upstream unavailable"),
				Code:    http.StatusBadGateway,
			})

			// Fatal error replayed at shutdown
			stack.Runtime.ReportFatal(severity.E_ERROR, "Allowed memory size exhausted")
			d.HandleShutdown(ctx)

			return stack.Shutdown(ctx)
		},
	}
}
