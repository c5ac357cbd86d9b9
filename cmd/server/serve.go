package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pocket-mini-server/internal/config"
	"pocket-mini-server/internal/router"
	"pocket-mini-server/internal/session"
	"pocket-mini-server/internal/websocket"
	"pocket-mini-server/pkg/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flagHost != "" {
		cfg.Server.Host = flagHost
	}
	if flagPort != "" {
		cfg.Server.Port = flagPort
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logging.Component(logger, "server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := session.NewRegistry(cfg.Session.TTL, logging.Component(logger, "registry"))
	wsManager := websocket.NewManager(websocket.Options{
		MaxConnPerSession: cfg.WebSocket.MaxConnPerSession,
		MaxMessageSize:    cfg.WebSocket.MaxMessageSize,
		WriteWait:         cfg.WebSocket.WriteWait,
		PongWait:          cfg.WebSocket.PongWait,
		PingPeriod:        cfg.WebSocket.PingPeriod,
	}, logging.Component(logger, "websocket"))

	r := router.New(router.Deps{
		Config:   cfg,
		Registry: registry,
		Manager:  wsManager,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		registry.Run(egCtx, cfg.Session.SweepInterval)
		return nil
	})

	eg.Go(func() error {
		wsManager.Run(egCtx)
		return nil
	})

	eg.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr": srv.Addr,
			"env":  cfg.Server.Env,
		}).Info("starting Pocket Mini server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}
