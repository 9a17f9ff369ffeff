package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"MediLedger/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:           "mediledger",
		Short:         "Patient and doctor portal backed by an appointment ledger",
		SilenceUsage: true,
	}
	root.AddCommand(newPortalCommand(), newNodeCommand())

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads configuration from the environment and checks the
// settings the subcommand needs.
func loadConfig(require func(*config.AppConfig) error) (*config.AppConfig, error) {
	cfg := config.Load()
	if err := require(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// serve runs the server until SIGINT or SIGTERM, then shuts it down
// gracefully.
func serve(addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   6 * time.Minute,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)

	serveErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Graceful shutdown handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	select {
	case <-c:
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	wg.Wait()
	logger.Info("server exited gracefully")
	return nil
}
