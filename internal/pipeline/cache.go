// Package pipeline fits vectorizer and classifier pairs on a corpus, caches
// the fitted pairs, and scores documents with them.
package pipeline

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"truthai/internal/classify"
	"truthai/internal/corpus"
	"truthai/internal/fault"
	"truthai/internal/vectorize"
)

// Key identifies one vectorizer and classifier combination.
type Key struct {
	Vectorizer vectorize.Kind
	Classifier classify.Kind
}

func (k Key) String() string {
	return string(k.Vectorizer) + ":" + string(k.Classifier)
}

// ParseKey parses "vectorizer:classifier", accepting the same aliases as the
// individual selections.
func ParseKey(s string) (Key, error) {
	vName, cName, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, errors.Errorf("pipeline %q must be written as vectorizer:classifier", s)
	}
	vk, err := vectorize.ParseKind(vName)
	if err != nil {
		return Key{}, err
	}
	ck, err := classify.ParseKind(cName)
	if err != nil {
		return Key{}, err
	}
	return Key{Vectorizer: vk, Classifier: ck}, nil
}

// AllKeys returns every supported combination.
func AllKeys() []Key {
	var keys []Key
	for _, vk := range vectorize.Kinds {
		for _, ck := range classify.Kinds {
			keys = append(keys, Key{Vectorizer: vk, Classifier: ck})
		}
	}
	return keys
}

// Fitted is a vectorizer and classifier pair after training. It is never
// modified once returned.
type Fitted struct {
	Key            Key
	Vectorizer     vectorize.Vectorizer
	Classifier     classify.Classifier
	Documents      int
	VocabularySize int
	TrainedAt      time.Time
	TrainDuration  time.Duration
}

// Options configures how a Cache builds pipelines. Zero fields use the
// package factories and a no-op logger.
type Options struct {
	NewVectorizer func(vectorize.Kind) (vectorize.Vectorizer, error)
	NewClassifier func(classify.Kind) (classify.Classifier, error)
	Logger        *zap.SugaredLogger
}

func (o Options) withDefaults() Options {
	if o.NewVectorizer == nil {
		o.NewVectorizer = vectorize.New
	}
	if o.NewClassifier == nil {
		o.NewClassifier = classify.New
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	return o
}

// Cache memoizes fitted pipelines by Key. Each key is fitted at most once
// for the lifetime of the Cache; concurrent requests for the same unfitted
// key wait on a single fit. A failed fit is not stored.
type Cache struct {
	opts Options

	mu      sync.RWMutex
	entries map[Key]*Fitted
	group   singleflight.Group
}

// NewCache returns an empty Cache.
func NewCache(opts Options) *Cache {
	return &Cache{
		opts:    opts.withDefaults(),
		entries: map[Key]*Fitted{},
	}
}

// Get returns the fitted pipeline for (vk, ck), fitting it on c first if
// the combination has not been fitted yet. The corpus only matters for the
// first call per key.
func (c *Cache) Get(ctx context.Context, vk vectorize.Kind, ck classify.Kind, corp *corpus.Corpus) (*Fitted, error) {
	if !vk.Valid() {
		return nil, fault.NewConfigError("vectorizer", string(vk))
	}
	if !ck.Valid() {
		return nil, fault.NewConfigError("classifier", string(ck))
	}
	key := Key{Vectorizer: vk, Classifier: ck}
	if f := c.lookup(key); f != nil {
		return f, nil
	}

	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		if f := c.lookup(key); f != nil {
			return f, nil
		}
		f, err := Fit(key, corp, c.opts)
		if err != nil {
			c.opts.Logger.Warnw("fitting pipeline failed", "pipeline", key.String(), "error", err)
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = f
		c.mu.Unlock()
		c.opts.Logger.Infow("fitted pipeline",
			"pipeline", key.String(),
			"documents", f.Documents,
			"vocabulary", f.VocabularySize,
			"took", f.TrainDuration,
		)
		return f, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Fitted), nil
	}
}

func (c *Cache) lookup(key Key) *Fitted {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[key]
}

// Len returns the number of fitted pipelines.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the fitted keys in sorted order.
func (c *Cache) Keys() []Key {
	c.mu.RLock()
	keys := lo.Keys(c.entries)
	c.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Fit builds and trains a fresh pipeline for key on corp without caching it.
// Factory failures are returned as is; fit failures as *fault.TrainingError.
func Fit(key Key, corp *corpus.Corpus, opts Options) (*Fitted, error) {
	opts = opts.withDefaults()
	vec, err := opts.NewVectorizer(key.Vectorizer)
	if err != nil {
		return nil, err
	}
	clf, err := opts.NewClassifier(key.Classifier)
	if err != nil {
		return nil, err
	}
	if corp.Len() == 0 {
		return nil, fault.NewTrainingError("vectorizer", errors.New("corpus has no documents"))
	}

	start := time.Now()
	texts := corp.Texts()
	if err := vec.Fit(texts); err != nil {
		return nil, fault.NewTrainingError("vectorizer", err)
	}
	features := make([]vectorize.Vector, len(texts))
	for i, text := range texts {
		if features[i], err = vec.Transform(text); err != nil {
			return nil, fault.NewTrainingError("vectorizer", err)
		}
	}
	if err := clf.Fit(features, corp.Labels()); err != nil {
		return nil, fault.NewTrainingError("classifier", err)
	}

	return &Fitted{
		Key:            key,
		Vectorizer:     vec,
		Classifier:     clf,
		Documents:      len(texts),
		VocabularySize: vec.Dim(),
		TrainedAt:      start,
		TrainDuration:  time.Since(start),
	}, nil
}
