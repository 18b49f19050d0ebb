package models

import "time"

// IndexRequest represents a request to add one labeled document to the corpus index
type IndexRequest struct {
	Text  string `json:"text" binding:"required"`
	Label string `json:"label" binding:"required"`
	Title string `json:"title"`
}

// IndexResponse represents the response from an index request
type IndexResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Indexed   bool      `json:"indexed"`
	Message   string    `json:"message"`
	IndexedAt time.Time `json:"indexed_at"`
}

// BulkIndexRequest asks the indexer to load its configured corpus file into
// the index. Delimiter overrides the configured field delimiter.
type BulkIndexRequest struct {
	Delimiter string `json:"delimiter"`
}

// BulkIndexResponse reports the outcome of a bulk load
type BulkIndexResponse struct {
	Index   string `json:"index"`
	Indexed uint64 `json:"indexed"`
	Failed  uint64 `json:"failed"`
	TookMS  int64  `json:"took_ms"`
	Message string `json:"message"`
}

// IndexedDocument represents a corpus document stored in the index
type IndexedDocument struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Label string `json:"label"`
	Title string `json:"title,omitempty"`
}
