package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/wordsort/pkg/api"
	"github.com/hazyhaar/wordsort/pkg/chassis"
	"github.com/mark3labs/mcp-go/server"
)

// runServe returns instead of exiting so the history store is closed.
func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	cfg, logger, err := loadConfig(*cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		return exitFailure
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	svc, err := newService(cfg, logger, true)
	if err != nil {
		logger.Error("init service", "error", err)
		return exitFailure
	}
	if svc.History != nil {
		defer svc.History.Close()
	}
	logger.Info("presets loaded", "count", svc.Presets.Count(), "history", svc.History != nil)

	// SIGHUP: reload presets.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go func() {
		for range sighup {
			if err := svc.Presets.Reload(); err != nil {
				logger.Error("preset reload failed", "error", err)
				continue
			}
			logger.Info("presets reloaded", "count", svc.Presets.Count())
		}
	}()

	router := api.NewRouter(svc)
	if cfg.QUIC {
		err = serveChassis(ctx, cfg.Addr, cfg.TLS.CertFile, cfg.TLS.KeyFile, router, api.NewMCPServer(svc, version), logger)
	} else {
		err = serveHTTP(ctx, cfg.Addr, router, logger)
	}
	if err != nil {
		logger.Error("server error", "error", err)
		return exitFailure
	}
	return exitOK
}

func serveHTTP(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("wordsort listening", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func serveChassis(ctx context.Context, addr, certFile, keyFile string, h http.Handler, mcpSrv *server.MCPServer, logger *slog.Logger) error {
	tlsCfg, selfSigned, err := chassis.LoadTLSConfig(certFile, keyFile)
	if err != nil {
		return err
	}
	if selfSigned {
		logger.Warn("no TLS certificate configured, using a self-signed one")
	}
	srv, err := chassis.New(chassis.Config{
		Addr:      addr,
		TLS:       tlsCfg,
		Handler:   h,
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	runErr := srv.Start(ctx)
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Join(runErr, srv.Shutdown(shutdownCtx))
}

func runMCP(args []string) int {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	cfg, logger, err := loadConfig(*cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		return exitFailure
	}
	svc, err := newService(cfg, logger, true)
	if err != nil {
		logger.Error("init service", "error", err)
		return exitFailure
	}
	if svc.History != nil {
		defer svc.History.Close()
	}

	if err := server.ServeStdio(api.NewMCPServer(svc, version)); err != nil {
		logger.Error("mcp stdio", "error", err)
		return exitFailure
	}
	return exitOK
}
