package pipeline

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"truthai/internal/classify"
	"truthai/internal/corpus"
	"truthai/internal/fault"
	"truthai/internal/vectorize"
)

// Service scores documents against a loaded corpus, fitting each requested
// pipeline lazily through its Cache.
type Service struct {
	corpus *corpus.Corpus
	cache  *Cache
	logger *zap.SugaredLogger
}

// NewService returns a Service owning corp and cache.
func NewService(corp *corpus.Corpus, cache *Cache, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{corpus: corp, cache: cache, logger: logger}
}

// Result is a Prediction together with the pipeline that produced it.
type Result struct {
	Prediction
	Key Key
}

// Predict parses the selections, validates text, and scores it with the
// cached pipeline for the selection. Selections are checked first, then the
// input, so a bad request never triggers a fit.
func (s *Service) Predict(ctx context.Context, vectorizerName, classifierName, text string) (Result, error) {
	vk, err := vectorize.ParseKind(vectorizerName)
	if err != nil {
		return Result{}, err
	}
	ck, err := classify.ParseKind(classifierName)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, fault.ErrEmptyInput
	}

	f, err := s.cache.Get(ctx, vk, ck, s.corpus)
	if err != nil {
		return Result{}, err
	}
	p, err := Predict(f, text)
	if err != nil {
		return Result{}, err
	}
	return Result{Prediction: p, Key: f.Key}, nil
}

// Warm fits the given pipelines ahead of the first request. All keys are
// attempted; the failures are combined.
func (s *Service) Warm(ctx context.Context, keys ...Key) error {
	var errs error
	for _, key := range keys {
		if _, err := s.cache.Get(ctx, key.Vectorizer, key.Classifier, s.corpus); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "warming %s", key))
		}
	}
	return errs
}

// ModelStatus describes one supported combination.
type ModelStatus struct {
	Key    Key
	Fitted *Fitted
}

// Models lists every supported combination with its fitted pipeline, if any.
func (s *Service) Models() []ModelStatus {
	var out []ModelStatus
	for _, key := range AllKeys() {
		out = append(out, ModelStatus{Key: key, Fitted: s.cache.lookup(key)})
	}
	return out
}

// Corpus returns the training corpus.
func (s *Service) Corpus() *corpus.Corpus {
	return s.corpus
}
