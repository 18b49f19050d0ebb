// Package analysis asks a hosted language model for a second opinion on a
// news text. The classifier pipeline never depends on it: when the model is
// unconfigured or unavailable the Analyzer returns a fixed fallback result.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"truthai/common/models"
)

// Config holds the settings for the remote model.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration

	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
	// Now overrides the clock used for analysis timestamps.
	Now func() time.Time
}

// Analyzer calls a Gemini-compatible generateContent endpoint.
type Analyzer struct {
	cfg    Config
	client *http.Client
	logger *zap.SugaredLogger
}

// New returns an Analyzer. A missing API key leaves it unconfigured; every
// call then returns the fallback result.
func New(cfg Config, logger *zap.SugaredLogger) *Analyzer {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://generativelanguage.googleapis.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Analyzer{cfg: cfg, client: client, logger: logger}
}

// Configured reports whether an API key is set.
func (a *Analyzer) Configured() bool {
	return a.cfg.APIKey != ""
}

// Analyze returns the model's assessment of text. mlPrediction, when set,
// is passed to the model as context ("FAKE" or "REAL"). Failures are logged
// and turned into the fallback result.
func (a *Analyzer) Analyze(ctx context.Context, text, mlPrediction string) models.AnalysisResult {
	now := a.cfg.Now()
	if !a.Configured() {
		return Fallback(now)
	}
	reply, err := a.generate(ctx, buildPrompt(text, mlPrediction))
	if err != nil {
		a.logger.Warnw("secondary analysis unavailable", "model", a.cfg.Model, "error", err)
		return Fallback(now)
	}
	if strings.TrimSpace(reply) == "" {
		return Fallback(now)
	}
	return ParseReply(reply, now)
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", err
	}
	data, err := a.do(ctx, http.MethodPost, "/v1beta/models/"+url.PathEscape(a.cfg.Model)+":generateContent", body)
	if err != nil {
		return "", err
	}

	var gr generateResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return "", errors.Wrap(err, "decoding model response")
	}
	if len(gr.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func (a *Analyzer) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(a.cfg.Endpoint, "/")+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-goog-api-key", a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling model")
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading model response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("model returned %d: %s", resp.StatusCode, models.TextSample(string(data), 200))
	}
	return data, nil
}
