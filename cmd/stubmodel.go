package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/xscaffold/internal/stubmodel"
)

var stubModelCmd = &cobra.Command{
	Use:   "stub-model",
	Short: "Serve a stand-in prediction service for development",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)

		opts := stubmodel.DefaultOptions()
		opts.Version = v.GetString("model-version")
		opts.SHAP = v.GetBool("shap")
		opts.Latency = v.GetDuration("latency")

		addr := v.GetString("addr")
		srv := &http.Server{
			Addr:              addr,
			Handler:           stubmodel.New(opts, slog.Default()).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			slog.Info("starting stub model", "addr", addr, "version", opts.Version, "shap", opts.SHAP)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		slog.Info("stub model stopped")
		return nil
	},
}

func init() {
	f := stubModelCmd.Flags()
	def := stubmodel.DefaultOptions()
	f.StringP("addr", "a", ":5000", "HTTP listen address")
	f.String("model-version", def.Version, "Version reported by /health")
	f.Bool("shap", def.SHAP, "Include SHAP-style contributions in predictions")
	f.Duration("latency", 0, "Artificial delay added to each prediction")
}
