package api

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"truthai/common/models"
	"truthai/internal/corpus"
	"truthai/internal/indexer"
)

// IndexerServiceName is reported by the corpus indexer health endpoint.
const IndexerServiceName = "corpus-indexer"

// DocumentStore is the corpus index used by the indexer routes.
type DocumentStore interface {
	IndexDocument(ctx context.Context, req models.IndexRequest) (models.IndexResponse, error)
	Get(ctx context.Context, id string) (models.IndexedDocument, error)
	Delete(ctx context.Context, id string) error
	IndexCorpus(ctx context.Context, c *corpus.Corpus) (models.BulkIndexResponse, error)
}

// BulkSource describes the corpus file loaded by POST /index/bulk. The file
// is fixed by the service configuration; requests cannot name another.
type BulkSource struct {
	Path    string
	Comma   rune
	Columns corpus.Columns
}

type indexHandler struct {
	store  DocumentStore
	bulk   BulkSource
	logger *zap.SugaredLogger
}

// NewIndexerRouter builds the corpus indexer router.
func NewIndexerRouter(store DocumentStore, bulk BulkSource, logger *zap.SugaredLogger, allowOrigins []string) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.Use(CORS(allowOrigins))

	h := &indexHandler{store: store, bulk: bulk, logger: logger}
	router.GET("/health", Health(IndexerServiceName))
	router.POST("/index", h.index)
	router.POST("/index/bulk", h.indexBulk)
	router.GET("/index/:id", h.get)
	router.DELETE("/index/:id", h.delete)
	return router
}

// index processes requests to add one labeled document
func (h *indexHandler) index(c *gin.Context) {
	var req models.IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid index request", err)
		return
	}
	resp, err := h.store.IndexDocument(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "Failed to index document", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// indexBulk loads the configured corpus file through the dataset loader and indexes it
func (h *indexHandler) indexBulk(c *gin.Context) {
	var req models.BulkIndexRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "Invalid bulk index request", err)
			return
		}
	}

	src := &corpus.CSVSource{Path: h.bulk.Path, Comma: h.bulk.Comma}
	if req.Delimiter != "" {
		d := req.Delimiter
		if d == `\t` {
			d = "\t"
		}
		if utf8.RuneCountInString(d) != 1 {
			Error(c, http.StatusBadRequest, "Invalid bulk index request", errors.Errorf("delimiter must be a single character, got %q", req.Delimiter))
			return
		}
		src.Comma, _ = utf8.DecodeRuneInString(d)
	}

	loader := corpus.NewLoader()
	if h.bulk.Columns != (corpus.Columns{}) {
		loader.Columns = h.bulk.Columns
	}
	corp, err := loader.Load(c.Request.Context(), src)
	if err != nil {
		Error(c, http.StatusBadRequest, "Failed to load corpus", err)
		return
	}
	resp, err := h.store.IndexCorpus(c.Request.Context(), corp)
	if err != nil {
		h.fail(c, "Failed to index corpus", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// get retrieves an indexed document by ID
func (h *indexHandler) get(c *gin.Context) {
	doc, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to fetch document", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// delete removes an indexed document by ID
func (h *indexHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "Failed to delete document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      id,
		"deleted": true,
		"message": "Document successfully removed from index",
	})
}

func (h *indexHandler) fail(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, indexer.ErrNotFound):
		Error(c, http.StatusNotFound, message, err)
	case errors.Is(err, indexer.ErrInvalidDocument):
		Error(c, http.StatusBadRequest, message, err)
	default:
		h.logger.Errorw(message, "error", err)
		Error(c, http.StatusInternalServerError, message, err)
	}
}
