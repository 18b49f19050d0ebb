package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"truthai/internal/api"
	"truthai/internal/config"
	"truthai/internal/corpus"
	"truthai/internal/indexer"
	"truthai/internal/logging"
)

func main() {
	cfg, err := config.Load(":8083")
	if err != nil {
		panic(err)
	}
	logger, err := logging.New("corpus-indexer", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	os.Exit(logging.Finish(logger, "corpus-indexer failed", run(cfg, logger)))
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	gin.SetMode(cfg.GinMode)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{cfg.ElasticsearchURL}})
	if err != nil {
		return errors.Wrap(err, "creating elasticsearch client")
	}
	ix := indexer.New(client, cfg.ElasticsearchIndex, logger.Named("indexer"))

	bulk := api.BulkSource{
		Path:    cfg.CorpusPath,
		Comma:   cfg.CorpusDelimiter,
		Columns: corpus.Columns{Text: cfg.CorpusTextColumn, Label: cfg.CorpusLabelColumn},
	}
	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: api.NewIndexerRouter(ix, bulk, logger.Named("http"), cfg.AllowOrigins),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("starting corpus-indexer server", "addr", cfg.ServerAddr, "index", ix.Index())
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
	logger.Info("shutting down corpus-indexer server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	logger.Info("corpus-indexer server exited")
	return nil
}
