package corpus

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

const (
	defaultScrollBatch     = 500
	defaultScrollKeepAlive = time.Minute
)

// ElasticSource reads the corpus from the documents of an Elasticsearch
// index, as written by the corpus indexer. Each document's _source fields
// become the table columns.
type ElasticSource struct {
	Client    *elasticsearch.Client
	Index     string
	BatchSize int
	KeepAlive time.Duration
}

// Name returns the index name.
func (s *ElasticSource) Name() string {
	return "elasticsearch:" + s.Index
}

type scrollResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID     string                 `json:"_id"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Table scrolls through every document of the index.
func (s *ElasticSource) Table(ctx context.Context) (*Table, error) {
	if s.Client == nil {
		return nil, errors.New("no elasticsearch client configured")
	}
	batch := s.BatchSize
	if batch <= 0 {
		batch = defaultScrollBatch
	}
	keepAlive := s.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultScrollKeepAlive
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.Index),
		s.Client.Search.WithSize(batch),
		s.Client.Search.WithSort("_doc"),
		s.Client.Search.WithScroll(keepAlive),
	)
	if err != nil {
		return nil, errors.Wrap(err, "searching corpus index")
	}
	page, err := decodeScroll(res)
	if err != nil {
		return nil, err
	}

	var sources []map[string]interface{}
	scrollID := page.ScrollID
	defer func() { s.clearScroll(scrollID) }()

	for len(page.Hits.Hits) > 0 {
		for _, hit := range page.Hits.Hits {
			sources = append(sources, hit.Source)
		}
		if scrollID == "" {
			break
		}
		res, err := s.Client.Scroll(
			s.Client.Scroll.WithContext(ctx),
			s.Client.Scroll.WithScrollID(scrollID),
			s.Client.Scroll.WithScroll(keepAlive),
		)
		if err != nil {
			return nil, errors.Wrap(err, "scrolling corpus index")
		}
		if page, err = decodeScroll(res); err != nil {
			return nil, err
		}
		if page.ScrollID != "" {
			scrollID = page.ScrollID
		}
	}

	return sourcesToTable(sources), nil
}

func (s *ElasticSource) clearScroll(id string) {
	if id == "" {
		return
	}
	res, err := s.Client.ClearScroll(s.Client.ClearScroll.WithScrollID(id))
	if err == nil {
		res.Body.Close()
	}
}

func decodeScroll(res *esapi.Response) (*scrollResponse, error) {
	defer res.Body.Close()
	if res.IsError() {
		return nil, errors.Errorf("elasticsearch returned %s", res.String())
	}
	var page scrollResponse
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		return nil, errors.Wrap(err, "decoding search response")
	}
	return &page, nil
}

func sourcesToTable(sources []map[string]interface{}) *Table {
	seen := map[string]struct{}{}
	for _, src := range sources {
		for k := range src {
			seen[k] = struct{}{}
		}
	}
	header := lo.Keys(seen)
	sort.Strings(header)

	table := &Table{Header: header}
	for i, src := range sources {
		fields := make([]string, len(header))
		for j, k := range header {
			if v, ok := src[k]; ok && v != nil {
				fields[j] = cast.ToString(v)
			}
		}
		table.Rows = append(table.Rows, Row{Line: i + 1, Fields: fields})
	}
	return table
}
