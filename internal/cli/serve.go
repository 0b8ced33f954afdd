package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/italypaleale/faultkit/bootstrap"
	"github.com/italypaleale/faultkit/faults"
	"github.com/italypaleale/faultkit/httpserver"
	"github.com/italypaleale/faultkit/severity"
)

// NewServeCommand returns the command that starts an HTTP server whose handlers raise faults on request.
func NewServeCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start an HTTP server whose handlers raise faults on request",
		Long: `Start an HTTP server whose handlers raise faults on request.

Routes:
  GET /healthz                       returns 200
  GET /report?code=E_USER_WARNING&message=...   reports a runtime error
  GET /panic?message=...             panics inside the handler`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stack, err := bootstrap.Init(ctx, cfg, bootstrap.Options{
				AppName:    "faultkit",
				AppVersion: version,
				Writer:     cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			defer func() {
				_ = stack.Shutdown(context.WithoutCancel(ctx))
			}()

			return serve(ctx, stack.Log, addr, newFaultMux(stack.Dispatcher))
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "Address to listen on")
	return cmd
}

func serve(ctx context.Context, log *slog.Logger, addr string, handler http.Handler) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()
	log.InfoContext(ctx, "HTTP server started", slog.String("addr", lis.Addr().String()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		log.InfoContext(ctx, "Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newFaultMux(d *faults.Dispatcher) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpserver.RespondWithJSON(w, r, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /report", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		codeStr := q.Get("code")
		if codeStr == "" {
			codeStr = "E_USER_WARNING"
		}
		code, err := severity.ParseCode(codeStr)
		if err != nil {
			httpserver.NewApiError("invalid_code", http.StatusBadRequest, err.Error()).WriteResponse(w, r)
			return
		}

		d.Report(r.Context(), code, q.Get("message"), map[string]any{
			"path":   r.URL.Path,
			"method": r.Method,
		})
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /panic", func(w http.ResponseWriter, r *http.Request) {
		msg := r.URL.Query().Get("message")
		if msg == "" {
			msg = "handler panicked"
		}
		panic(errors.New(msg))
	})

	return httpserver.Use(mux, httpserver.MiddlewareRecover(d))
}
