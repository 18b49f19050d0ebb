package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"truthai/common/models"
	"truthai/internal/corpus"
	"truthai/internal/indexer"
)

type memoryStore struct {
	docs    map[string]models.IndexedDocument
	corpora []*corpus.Corpus
}

func (m *memoryStore) IndexDocument(_ context.Context, req models.IndexRequest) (models.IndexResponse, error) {
	label, err := corpus.DefaultLabelMapping.Parse(req.Label)
	if err != nil {
		return models.IndexResponse{}, errors.Wrap(indexer.ErrInvalidDocument, err.Error())
	}
	id := "doc-" + string(rune('a'+len(m.docs)))
	m.docs[id] = models.IndexedDocument{ID: id, Text: req.Text, Label: corpus.DefaultLabelMapping.Format(label)}
	return models.IndexResponse{ID: id, Label: m.docs[id].Label, Indexed: true}, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (models.IndexedDocument, error) {
	d, ok := m.docs[id]
	if !ok {
		return models.IndexedDocument{}, indexer.ErrNotFound
	}
	return d, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return indexer.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memoryStore) IndexCorpus(_ context.Context, c *corpus.Corpus) (models.BulkIndexResponse, error) {
	m.corpora = append(m.corpora, c)
	return models.BulkIndexResponse{Index: "test", Indexed: uint64(c.Len())}, nil
}

func newIndexerRouter(t *testing.T, bulk BulkSource) (*gin.Engine, *memoryStore) {
	t.Helper()
	store := &memoryStore{docs: map[string]models.IndexedDocument{}}
	return NewIndexerRouter(store, bulk, nil, nil), store
}

func TestIndexerDocumentRoutes(t *testing.T) {
	r, store := newIndexerRouter(t, BulkSource{})

	w := doJSON(t, r, http.MethodPost, "/index", models.IndexRequest{Text: "council approves budget", Label: "real"})
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	var created models.IndexResponse
	test.That(t, json.Unmarshal(w.Body.Bytes(), &created), test.ShouldBeNil)
	test.That(t, created.Label, test.ShouldEqual, "REAL")
	test.That(t, store.docs, test.ShouldHaveLength, 1)

	w = doJSON(t, r, http.MethodGet, "/index/"+created.ID, nil)
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	var doc models.IndexedDocument
	test.That(t, json.Unmarshal(w.Body.Bytes(), &doc), test.ShouldBeNil)
	test.That(t, doc.Text, test.ShouldEqual, "council approves budget")

	w = doJSON(t, r, http.MethodDelete, "/index/"+created.ID, nil)
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)

	w = doJSON(t, r, http.MethodGet, "/index/"+created.ID, nil)
	test.That(t, w.Code, test.ShouldEqual, http.StatusNotFound)
	w = doJSON(t, r, http.MethodDelete, "/index/"+created.ID, nil)
	test.That(t, w.Code, test.ShouldEqual, http.StatusNotFound)
}

func TestIndexerRejectsBadDocuments(t *testing.T) {
	r, _ := newIndexerRouter(t, BulkSource{})

	w := doJSON(t, r, http.MethodPost, "/index", map[string]string{"text": "no label"})
	test.That(t, w.Code, test.ShouldEqual, http.StatusBadRequest)

	w = doJSON(t, r, http.MethodPost, "/index", models.IndexRequest{Text: "text", Label: "satire"})
	test.That(t, w.Code, test.ShouldEqual, http.StatusBadRequest)
	var resp models.ErrorResponse
	test.That(t, json.Unmarshal(w.Body.Bytes(), &resp), test.ShouldBeNil)
	test.That(t, resp.Error, test.ShouldContainSubstring, "satire")
}

func TestIndexerBulk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.tsv")
	data := strings.Join([]string{
		"title\ttext\tlabel",
		"a\tcouncil approves budget\tREAL",
		"b\tmiracle cure hidden by doctors\tFAKE",
	}, "\n") + "\n"
	test.That(t, os.WriteFile(path, []byte(data), 0o600), test.ShouldBeNil)

	r, store := newIndexerRouter(t, BulkSource{Path: path, Comma: '\t'})

	w := doJSON(t, r, http.MethodPost, "/index/bulk", nil)
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, store.corpora, test.ShouldHaveLength, 1)
	test.That(t, store.corpora[0].Labels(), test.ShouldResemble, []int{0, 1})

	w = doJSON(t, r, http.MethodPost, "/index/bulk", models.BulkIndexRequest{Delimiter: ","})
	test.That(t, w.Code, test.ShouldEqual, http.StatusBadRequest)

	w = doJSON(t, r, http.MethodPost, "/index/bulk", models.BulkIndexRequest{Delimiter: "::"})
	test.That(t, w.Code, test.ShouldEqual, http.StatusBadRequest)
}

func TestIndexerBulkIgnoresRequestedPath(t *testing.T) {
	configured := filepath.Join(t.TempDir(), "news.csv")
	test.That(t, os.WriteFile(configured, []byte("text,label\ncouncil approves budget,REAL\nmiracle cure,FAKE\n"), 0o600), test.ShouldBeNil)

	private := filepath.Join(t.TempDir(), "private.csv")
	test.That(t, os.WriteFile(private, []byte("text,label\nsecret,TOPSECRET\nhidden,FAKE\n"), 0o600), test.ShouldBeNil)

	r, store := newIndexerRouter(t, BulkSource{Path: configured, Comma: ','})

	w := doJSON(t, r, http.MethodPost, "/index/bulk", map[string]string{"path": private})
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, w.Body.String(), test.ShouldNotContainSubstring, "TOPSECRET")
	test.That(t, store.corpora, test.ShouldHaveLength, 1)
	test.That(t, store.corpora[0].Texts(), test.ShouldResemble, []string{"council approves budget", "miracle cure"})

	r, store = newIndexerRouter(t, BulkSource{Path: filepath.Join(t.TempDir(), "missing.csv"), Comma: ','})
	w = doJSON(t, r, http.MethodPost, "/index/bulk", map[string]string{"path": private})
	test.That(t, w.Code, test.ShouldEqual, http.StatusBadRequest)
	test.That(t, w.Body.String(), test.ShouldNotContainSubstring, "TOPSECRET")
	test.That(t, store.corpora, test.ShouldBeEmpty)
}
