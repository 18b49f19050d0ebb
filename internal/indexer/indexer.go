// Package indexer writes labeled corpus documents to Elasticsearch in the
// shape the corpus loader reads back.
package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"truthai/common/models"
	"truthai/internal/corpus"
)

var (
	// ErrNotFound is returned when a document id is not in the index.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidDocument is returned for documents with empty text or an
	// unrecognized label.
	ErrInvalidDocument = errors.New("invalid document")
)

// Document is the stored _source of one corpus document.
type Document struct {
	Text      string    `json:"text"`
	Label     string    `json:"label"`
	Title     string    `json:"title,omitempty"`
	IndexedAt time.Time `json:"indexed_at"`
}

// Indexer manages the corpus index.
type Indexer struct {
	client  *elasticsearch.Client
	index   string
	mapping corpus.LabelMapping
	logger  *zap.SugaredLogger

	// Workers is the number of bulk indexing workers; zero uses the client default.
	Workers int
	now     func() time.Time
}

// New returns an Indexer writing to index.
func New(client *elasticsearch.Client, index string, logger *zap.SugaredLogger) *Indexer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Indexer{
		client:  client,
		index:   index,
		mapping: corpus.DefaultLabelMapping,
		logger:  logger,
		now:     time.Now,
	}
}

// Index returns the index name.
func (ix *Indexer) Index() string {
	return ix.index
}

// IndexDocument stores one labeled document under a fresh id. The label is
// normalized to its canonical form.
func (ix *Indexer) IndexDocument(ctx context.Context, req models.IndexRequest) (models.IndexResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return models.IndexResponse{}, errors.Wrap(ErrInvalidDocument, "text is empty")
	}
	label, err := ix.mapping.Parse(req.Label)
	if err != nil {
		return models.IndexResponse{}, errors.Wrap(ErrInvalidDocument, err.Error())
	}

	doc := Document{
		Text:      req.Text,
		Label:     ix.mapping.Format(label),
		Title:     req.Title,
		IndexedAt: ix.now().UTC(),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return models.IndexResponse{}, err
	}

	id := uuid.NewString()
	res, err := ix.client.Index(ix.index, bytes.NewReader(body),
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(id),
		ix.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return models.IndexResponse{}, errors.Wrap(err, "indexing document")
	}
	defer res.Body.Close()
	if res.IsError() {
		return models.IndexResponse{}, errors.Errorf("elasticsearch returned %s", res.String())
	}

	ix.logger.Debugw("indexed document", "id", id, "label", doc.Label)
	return models.IndexResponse{
		ID:        id,
		Label:     doc.Label,
		Indexed:   true,
		Message:   "Document successfully indexed",
		IndexedAt: doc.IndexedAt,
	}, nil
}

// Get fetches a stored document.
func (ix *Indexer) Get(ctx context.Context, id string) (models.IndexedDocument, error) {
	res, err := ix.client.Get(ix.index, id, ix.client.Get.WithContext(ctx))
	if err != nil {
		return models.IndexedDocument{}, errors.Wrap(err, "fetching document")
	}
	defer res.Body.Close()
	if err := checkResponse(res); err != nil {
		return models.IndexedDocument{}, err
	}

	var found struct {
		ID     string   `json:"_id"`
		Found  bool     `json:"found"`
		Source Document `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&found); err != nil {
		return models.IndexedDocument{}, errors.Wrap(err, "decoding document")
	}
	if !found.Found {
		return models.IndexedDocument{}, ErrNotFound
	}
	return models.IndexedDocument{
		ID:    found.ID,
		Text:  found.Source.Text,
		Label: found.Source.Label,
		Title: found.Source.Title,
	}, nil
}

// Delete removes a stored document.
func (ix *Indexer) Delete(ctx context.Context, id string) error {
	res, err := ix.client.Delete(ix.index, id,
		ix.client.Delete.WithContext(ctx),
		ix.client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	defer res.Body.Close()
	return checkResponse(res)
}

// IndexCorpus bulk-loads every document of c. Individual item failures are
// counted and logged; the returned error covers only failures of the bulk
// indexer itself.
func (ix *Indexer) IndexCorpus(ctx context.Context, c *corpus.Corpus) (models.BulkIndexResponse, error) {
	start := ix.now()
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     ix.client,
		Index:      ix.index,
		NumWorkers: ix.Workers,
		Refresh:    "true",
	})
	if err != nil {
		return models.BulkIndexResponse{}, errors.Wrap(err, "creating bulk indexer")
	}

	var failed uint64
	indexedAt := start.UTC()
	for _, d := range c.Documents {
		body, err := json.Marshal(Document{Text: d.Text, Label: ix.mapping.Format(d.Label), IndexedAt: indexedAt})
		if err != nil {
			return models.BulkIndexResponse{}, err
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: uuid.NewString(),
			Body:       bytes.NewReader(body),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, resp esutil.BulkIndexerResponseItem, err error) {
				atomic.AddUint64(&failed, 1)
				if err != nil {
					ix.logger.Warnw("bulk item failed", "id", item.DocumentID, "error", err)
					return
				}
				ix.logger.Warnw("bulk item rejected", "id", item.DocumentID, "type", resp.Error.Type, "reason", resp.Error.Reason)
			},
		})
		if err != nil {
			bi.Close(ctx)
			return models.BulkIndexResponse{}, errors.Wrap(err, "queueing document")
		}
	}
	if err := bi.Close(ctx); err != nil {
		return models.BulkIndexResponse{}, errors.Wrap(err, "flushing bulk indexer")
	}

	stats := bi.Stats()
	took := ix.now().Sub(start)
	ix.logger.Infow("bulk indexed corpus", "index", ix.index, "indexed", stats.NumFlushed, "failed", stats.NumFailed, "took", took)
	return models.BulkIndexResponse{
		Index:   ix.index,
		Indexed: stats.NumFlushed,
		Failed:  atomic.LoadUint64(&failed),
		TookMS:  took.Milliseconds(),
		Message: "Corpus indexed",
	}, nil
}

func checkResponse(res *esapi.Response) error {
	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.IsError() {
		return errors.Errorf("elasticsearch returned %s", res.String())
	}
	return nil
}
