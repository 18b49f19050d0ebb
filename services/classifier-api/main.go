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

	"truthai/internal/analysis"
	"truthai/internal/api"
	"truthai/internal/config"
	"truthai/internal/corpus"
	"truthai/internal/logging"
	"truthai/internal/pipeline"
)

func main() {
	cfg, err := config.Load(":8082")
	if err != nil {
		panic(err)
	}
	logger, err := logging.New("classifier-api", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	os.Exit(logging.Finish(logger, "classifier-api failed", run(cfg, logger)))
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	gin.SetMode(cfg.GinMode)

	src, err := corpusSource(cfg)
	if err != nil {
		return err
	}
	loader := &corpus.Loader{
		Columns: corpus.Columns{Text: cfg.CorpusTextColumn, Label: cfg.CorpusLabelColumn},
		Mapping: corpus.DefaultLabelMapping,
	}
	corp, err := loader.Load(context.Background(), src)
	if err != nil {
		return err
	}
	realDocs, fakeDocs := corp.Counts()
	logger.Infow("corpus loaded", "source", src.Name(), "documents", corp.Len(), "real", realDocs, "fake", fakeDocs)

	cache := pipeline.NewCache(pipeline.Options{Logger: logger.Named("cache")})
	svc := pipeline.NewService(corp, cache, logger)

	var keys []pipeline.Key
	for _, p := range cfg.WarmPipelines {
		key, err := pipeline.ParseKey(p)
		if err != nil {
			return errors.Wrap(err, "invalid WARM_PIPELINES")
		}
		keys = append(keys, key)
	}
	if err := svc.Warm(context.Background(), keys...); err != nil {
		return err
	}

	analyzer := analysis.New(analysis.Config{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		Endpoint: cfg.GeminiEndpoint,
		Timeout:  cfg.GeminiTimeout,
	}, logger.Named("analysis"))
	if !analyzer.Configured() {
		logger.Warn("GEMINI_API_KEY not set; /analyze returns fallback results")
	}

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: api.NewRouter(svc, analyzer, logger.Named("http"), cfg.AllowOrigins),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("starting classifier-api server", "addr", cfg.ServerAddr)
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
	logger.Info("shutting down classifier-api server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	logger.Info("classifier-api server exited")
	return nil
}

func corpusSource(cfg *config.Config) (corpus.Source, error) {
	if cfg.CorpusSource == config.SourceElasticsearch {
		client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{cfg.ElasticsearchURL}})
		if err != nil {
			return nil, errors.Wrap(err, "creating elasticsearch client")
		}
		return &corpus.ElasticSource{Client: client, Index: cfg.ElasticsearchIndex}, nil
	}
	return &corpus.CSVSource{Path: cfg.CorpusPath, Comma: cfg.CorpusDelimiter}, nil
}
