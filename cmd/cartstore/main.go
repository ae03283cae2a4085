package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolayk812/cartcheckout/internal/config"
	"github.com/nikolayk812/cartcheckout/internal/httpapi"
	"github.com/nikolayk812/cartcheckout/internal/idempotency"
	"github.com/nikolayk812/cartcheckout/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Base().Error("cartstore stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := flag.String("config", getEnv("CARTSTORE_CONFIG_DIR", "configs"), "directory holding base.yaml")
	envName := flag.String("env", getEnv("CARTSTORE_ENV", "dev"), "name of the optional <env>.yaml overlay")
	flag.Parse()

	cfg, err := config.Load(*configDir, *envName)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log := logging.Init(logging.Options{
		Component: cfg.App.Name,
		FilePath:  cfg.App.LogFile,
		Level:     cfg.App.LogLevel,
	})
	log.Info("cartstore starting", "env", *envName, "storage", cfg.App.Storage)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	front, err := buildStorefront(ctx, cfg, st, log)
	if err != nil {
		return err
	}
	defer front.close()

	idem := front.idempotency
	if idem == nil {
		idem = idempotency.NewMemory(cfg.Idempotency.TTL)
	}

	handler, err := httpapi.NewRouter(httpapi.Deps{
		Carts:          st.carts,
		Orders:         st.orders,
		Wallets:        st.wallets,
		Profiles:       st.profiles,
		Log:            logging.New("http"),
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Storefront:     front.storefront,
		Idempotency:    idem,
	})
	if err != nil {
		return fmt.Errorf("httpapi.NewRouter: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.App.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down cartstore")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	log.Info("cartstore stopped")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
