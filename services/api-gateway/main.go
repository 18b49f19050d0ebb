package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"truthai/internal/config"
	"truthai/internal/gateway"
	"truthai/internal/logging"
)

func main() {
	cfg, err := config.Load(":8080")
	if err != nil {
		panic(err)
	}
	logger, err := logging.New("api-gateway", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	os.Exit(logging.Finish(logger, "api-gateway failed", run(cfg, logger)))
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	gin.SetMode(cfg.GinMode)

	router, err := gateway.NewRouter(gateway.Upstreams{
		Classifier: cfg.ClassifierServiceURL,
		Indexer:    cfg.IndexerServiceURL,
	}, logger.Named("proxy"), cfg.AllowOrigins)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("starting api-gateway server", "addr", cfg.ServerAddr,
			"classifier", cfg.ClassifierServiceURL, "indexer", cfg.IndexerServiceURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return errors.Wrap(err, "failed to start server")
	case <-quit:
	}
	logger.Info("shutting down api-gateway server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	logger.Info("api-gateway server exited")
	return nil
}
