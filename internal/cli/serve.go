package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/conorfennell/notedeck/internal/sync"
	"github.com/conorfennell/notedeck/internal/web"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and sync sources on a schedule",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("Database opened", "driver", cfg.Database.Driver)

	syncer := sync.NewSyncer(db, cfg.Sync.ReposDir)
	stopSync, err := syncer.Schedule(ctx, cfg.Sync.Interval)
	if err != nil {
		return err
	}
	defer stopSync()

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: web.NewServer(db, syncer, cfg.Review),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", cfg.HTTP.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
