package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/cache"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/config"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/handler"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/router"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/service"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides SERVER_PORT)")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log := logger.Init(cfg.Logger())
	log.Info("Starting server", "environment", cfg.App.Environment, "version", version)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Error("Failed to close backends", "error", err)
		}
	}()

	players := service.NewPlayerService(b.players)
	players.SetCache(b.cache, cfg.Cache.TTL)

	var buffer *cache.RedisLogBuffer
	if cfg.Logs.Buffered {
		buffer = cache.NewRedisLogBuffer(b.redis, cache.RedisBufferConfig{
			FlushInterval: cfg.Logs.FlushInterval,
		}, service.CreateFlushFunc(b.logs))
		players.SetLogSink(buffer)
		log.Info("Mutation logs buffered in Redis", "flush_interval", cfg.Logs.FlushInterval.String())
	} else {
		players.SetLogSink(service.NewDirectLogSink(b.logs))
	}

	cleanupCfg := service.DefaultCleanupConfig()
	cleanupCfg.Retention = cfg.Logs.Retention
	cleanupCfg.CleanupInterval = cfg.Logs.CleanupInterval
	scheduler := service.NewCleanupScheduler(b.logs, cleanupCfg)
	scheduler.Start()

	checks := []handler.ReadyCheck{{Name: "store", Probe: b.pingStore}}
	if b.redis != nil {
		checks = append(checks, handler.ReadyCheck{Name: "redis", Probe: b.pingRedis})
	}

	var counter handler.BufferCounter
	if buffer != nil {
		counter = buffer
	}

	r := router.New(router.Config{
		Handler:        handler.New(cfg.App.Name, version, checks...),
		PlayerHandler:  handler.NewPlayerHandler(players),
		LogHandler:     handler.NewLogHandler(service.NewLogService(b.logs)),
		AdminHandler:   handler.NewAdminHandler(b.players, counter, cfg.Store.Type, cfg.Cache.Type),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		scheduler.Stop()
		if buffer != nil {
			buffer.Close()
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", "error", err)
	}

	scheduler.Stop()

	// Pending logs are flushed before the store closes.
	if buffer != nil {
		if err := buffer.Close(); err != nil {
			log.Error("Failed to flush mutation logs", "error", err)
		}
	}

	log.Info("Server stopped")
	return nil
}
