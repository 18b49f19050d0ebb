package models

// Default selections used when a request names no pipeline.
const (
	DefaultVectorizer = "tfidf"
	DefaultClassifier = "linear-svm"
)

// PredictionRequest represents a request to classify one news document
type PredictionRequest struct {
	Text       string `json:"text" binding:"required"`
	Vectorizer string `json:"vectorizer"`
	Classifier string `json:"classifier"`
	URL        string `json:"url"`
}

// ApplyDefaults fills empty selections with the default pipeline
func (r *PredictionRequest) ApplyDefaults() {
	if r.Vectorizer == "" {
		r.Vectorizer = DefaultVectorizer
	}
	if r.Classifier == "" {
		r.Classifier = DefaultClassifier
	}
}

// PredictionResponse represents the result of a classification
type PredictionResponse struct {
	ID         string  `json:"id"`
	Label      int     `json:"label"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Vectorizer string  `json:"vectorizer"`
	Classifier string  `json:"classifier"`
	TextSample string  `json:"text_sample"`
	URL        string  `json:"url,omitempty"`
}

// ModelInfo describes one vectorizer/classifier combination
type ModelInfo struct {
	Vectorizer     string `json:"vectorizer"`
	Classifier     string `json:"classifier"`
	Fitted         bool   `json:"fitted"`
	Documents      int    `json:"documents,omitempty"`
	VocabularySize int    `json:"vocabulary_size,omitempty"`
	TrainedAt      string `json:"trained_at,omitempty"`
	TrainMillis    int64  `json:"train_ms,omitempty"`
}

// ModelsResponse lists the supported combinations
type ModelsResponse struct {
	Models        []ModelInfo `json:"models"`
	CorpusSize    int         `json:"corpus_size"`
	RealDocuments int         `json:"real_documents"`
	FakeDocuments int         `json:"fake_documents"`
	Vectorizers   []string    `json:"vectorizers"`
	Classifiers   []string    `json:"classifiers"`
}

// TextSample returns at most n runes of text, with an ellipsis when cut
func TextSample(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
