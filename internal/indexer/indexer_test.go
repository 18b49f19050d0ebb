package indexer

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"truthai/common/models"
	"truthai/internal/corpus"
)

// memoryElastic serves the document and bulk APIs from an in-memory map.
type memoryElastic struct {
	mu   sync.Mutex
	docs map[string]Document
}

func (m *memoryElastic) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case parts[len(parts)-1] == "_bulk":
		m.bulk(w, r.Body)
	case len(parts) == 3 && parts[1] == "_doc":
		id := parts[2]
		switch r.Method {
		case http.MethodPut, http.MethodPost:
			var d Document
			json.NewDecoder(r.Body).Decode(&d)
			m.docs[id] = d
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"_id": id, "result": "created"})
		case http.MethodGet:
			d, ok := m.docs[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]any{"_id": id, "found": false})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"_id": id, "found": true, "_source": d})
		case http.MethodDelete:
			if _, ok := m.docs[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]any{"_id": id, "result": "not_found"})
				return
			}
			delete(m.docs, id)
			json.NewEncoder(w).Encode(map[string]any{"_id": id, "result": "deleted"})
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"unsupported"}`))
	}
}

func (m *memoryElastic) bulk(w http.ResponseWriter, body io.Reader) {
	var items []map[string]any
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		var action map[string]map[string]any
		if err := json.Unmarshal(sc.Bytes(), &action); err != nil {
			continue
		}
		meta := action["index"]
		id, _ := meta["_id"].(string)
		if !sc.Scan() {
			break
		}
		var d Document
		json.Unmarshal(sc.Bytes(), &d)
		status := http.StatusCreated
		if d.Text == "reject me" {
			items = append(items, map[string]any{"index": map[string]any{
				"_id": id, "status": http.StatusBadRequest,
				"error": map[string]any{"type": "mapper_parsing_exception", "reason": "bad document"},
			}})
			continue
		}
		m.docs[id] = d
		items = append(items, map[string]any{"index": map[string]any{"_id": id, "status": status, "result": "created"}})
	}
	json.NewEncoder(w).Encode(map[string]any{"took": 1, "errors": false, "items": items})
}

func newTestIndexer(t *testing.T) (*Indexer, *memoryElastic) {
	t.Helper()
	mem := &memoryElastic{docs: map[string]Document{}}
	srv := httptest.NewServer(mem)
	t.Cleanup(srv.Close)
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	test.That(t, err, test.ShouldBeNil)
	return New(client, "truthai-corpus", nil), mem
}

func TestIndexDocumentRoundTrip(t *testing.T) {
	ix, mem := newTestIndexer(t)
	ctx := context.Background()

	resp, err := ix.IndexDocument(ctx, models.IndexRequest{Text: "council approves budget", Label: "real", Title: "budget"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp.Indexed, test.ShouldBeTrue)
	test.That(t, resp.Label, test.ShouldEqual, "REAL")
	test.That(t, resp.ID, test.ShouldNotBeEmpty)
	test.That(t, mem.docs, test.ShouldHaveLength, 1)

	doc, err := ix.Get(ctx, resp.ID)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, doc.Text, test.ShouldEqual, "council approves budget")
	test.That(t, doc.Label, test.ShouldEqual, "REAL")
	test.That(t, doc.Title, test.ShouldEqual, "budget")

	test.That(t, ix.Delete(ctx, resp.ID), test.ShouldBeNil)
	_, err = ix.Get(ctx, resp.ID)
	test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)
	test.That(t, errors.Is(ix.Delete(ctx, resp.ID), ErrNotFound), test.ShouldBeTrue)
}

func TestIndexDocumentRejectsInvalid(t *testing.T) {
	ix, mem := newTestIndexer(t)
	ctx := context.Background()

	_, err := ix.IndexDocument(ctx, models.IndexRequest{Text: "text", Label: "satire"})
	test.That(t, errors.Is(err, ErrInvalidDocument), test.ShouldBeTrue)

	_, err = ix.IndexDocument(ctx, models.IndexRequest{Text: "   ", Label: "FAKE"})
	test.That(t, errors.Is(err, ErrInvalidDocument), test.ShouldBeTrue)
	test.That(t, mem.docs, test.ShouldHaveLength, 0)
}

func TestIndexCorpus(t *testing.T) {
	ix, mem := newTestIndexer(t)
	c := &corpus.Corpus{Documents: []corpus.Document{
		{Text: "council approves budget", Label: corpus.Real},
		{Text: "miracle cure hidden by doctors", Label: corpus.Fake},
		{Text: "reject me", Label: corpus.Fake},
	}}

	resp, err := ix.IndexCorpus(context.Background(), c)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp.Index, test.ShouldEqual, "truthai-corpus")
	test.That(t, resp.Indexed, test.ShouldEqual, uint64(2))
	test.That(t, resp.Failed, test.ShouldEqual, uint64(1))

	labels := map[string]int{}
	for _, d := range mem.docs {
		labels[d.Label]++
	}
	test.That(t, labels, test.ShouldResemble, map[string]int{"REAL": 1, "FAKE": 1})
}
