package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/leafdoc/internal/handlers"
	"github.com/Brownie44l1/leafdoc/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (upload page and JSON API)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.NewZapLogger(cfg.App.LogLevel, cfg.App.LogEncoding)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	ctx := logger.WithComponent(context.Background(), "server")

	log.Infof(ctx, "loading model from %s", cfg.Model.Path)
	a, err := newApp(cfg, log)
	if err != nil {
		log.Errorf(ctx, "failed to initialize: %v", err)
		return err
	}
	defer a.close(ctx)

	gin.SetMode(gin.ReleaseMode)
	handler := handlers.NewHandler(a.analyzer, a.catalog, a.runtime.InputShape(), cfg.MaxUploadBytes(), log)
	router := handlers.NewRouter(handler, handlers.RouterOptions{
		CORS:    cfg.Server.CORS,
		Metrics: a.metrics,
		Log:     log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
	}

	log.Infof(ctx, "model loaded: %d categories, input shape %v", a.runtime.Labels().Len(), a.runtime.InputShape())
	log.Infof(ctx, "catalog loaded: %d records", a.catalog.Len())
	log.Infof(ctx, "endpoints: GET / | POST /analyze | POST /api/v1/predict | POST /api/v1/predict/image | GET /api/v1/catalog/:id | GET /health | GET /metrics")
	log.Infof(ctx, "upload test: curl -X POST -F \"image=@leaf.jpg\" http://localhost:%s/api/v1/predict/image", cfg.Server.Port)

	serverErr := make(chan error, 1)
	go func() {
		log.Infof(ctx, "server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Infof(ctx, "received %s, shutting down", s)
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Infof(ctx, "server stopped")
	return nil
}
