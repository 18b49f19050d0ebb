// Package config reads service settings from the environment.
package config

import (
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Corpus source kinds accepted in CORPUS_SOURCE.
const (
	SourceCSV           = "csv"
	SourceElasticsearch = "elasticsearch"
)

// Config holds the settings shared by the TRUTH-AI services.
type Config struct {
	ServerAddr      string
	GinMode         string
	LogLevel        string
	ShutdownTimeout time.Duration
	AllowOrigins    []string

	CorpusSource      string
	CorpusPath        string
	CorpusDelimiter   rune
	CorpusTextColumn  string
	CorpusLabelColumn string

	ElasticsearchURL   string
	ElasticsearchIndex string

	// WarmPipelines lists "vectorizer:classifier" pairs fitted at startup.
	WarmPipelines []string

	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string
	GeminiTimeout  time.Duration

	ClassifierServiceURL string
	IndexerServiceURL    string
}

// Load reads the configuration from the environment. defaultAddr is used
// when SERVER_ADDR is unset.
func Load(defaultAddr string) (*Config, error) {
	cfg := &Config{
		ServerAddr:           getEnv("SERVER_ADDR", defaultAddr),
		GinMode:              getEnv("GIN_MODE", "debug"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		AllowOrigins:         splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		CorpusSource:         strings.ToLower(getEnv("CORPUS_SOURCE", SourceCSV)),
		CorpusPath:           getEnv("CORPUS_PATH", "fake_or_real_news.csv"),
		CorpusTextColumn:     getEnv("CORPUS_TEXT_COLUMN", "text"),
		CorpusLabelColumn:    getEnv("CORPUS_LABEL_COLUMN", "label"),
		ElasticsearchURL:     getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
		ElasticsearchIndex:   getEnv("ELASTICSEARCH_INDEX", "truthai-corpus"),
		WarmPipelines:        splitList(os.Getenv("WARM_PIPELINES")),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiEndpoint:       getEnv("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com"),
		ClassifierServiceURL: getEnv("CLASSIFIER_SERVICE_URL", "http://localhost:8082"),
		IndexerServiceURL:    getEnv("CORPUS_INDEXER_URL", "http://localhost:8083"),
	}

	var err error
	if cfg.ShutdownTimeout, err = cast.ToDurationE(getEnv("SHUTDOWN_TIMEOUT", "5s")); err != nil {
		return nil, errors.Wrap(err, "invalid SHUTDOWN_TIMEOUT")
	}
	if cfg.GeminiTimeout, err = cast.ToDurationE(getEnv("GEMINI_TIMEOUT", "30s")); err != nil {
		return nil, errors.Wrap(err, "invalid GEMINI_TIMEOUT")
	}

	delim := os.Getenv("CORPUS_DELIMITER")
	if delim == "" {
		delim = ","
	}
	if delim == `\t` {
		delim = "\t"
	}
	if utf8.RuneCountInString(delim) != 1 {
		return nil, errors.Errorf("CORPUS_DELIMITER must be a single character, got %q", delim)
	}
	cfg.CorpusDelimiter, _ = utf8.DecodeRuneInString(delim)

	switch cfg.CorpusSource {
	case SourceCSV, SourceElasticsearch:
	default:
		return nil, errors.Errorf("unknown CORPUS_SOURCE %q", cfg.CorpusSource)
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
