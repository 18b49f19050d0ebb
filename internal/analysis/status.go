package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// MinTextLength is the shortest text, in runes after trimming, worth sending
// to the model.
const MinTextLength = 10

const pingPrompt = "Say 'Hello, Gemini is working!' and nothing else."

var (
	// ErrTextTooShort is returned by CheckText for texts under MinTextLength.
	ErrTextTooShort = errors.Errorf("text must be at least %d characters for analysis", MinTextLength)
	// ErrNotConfigured is returned by Ping and ListModels without an API key.
	ErrNotConfigured = errors.New("no model API key configured")
)

// CheckText rejects texts too short to analyze.
func CheckText(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return ErrTextTooShort
	}
	return nil
}

// Model returns the configured model name.
func (a *Analyzer) Model() string {
	return a.cfg.Model
}

// Ping sends a fixed prompt and returns the model's trimmed reply.
func (a *Analyzer) Ping(ctx context.Context) (string, error) {
	if !a.Configured() {
		return "", ErrNotConfigured
	}
	reply, err := a.generate(ctx, pingPrompt)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", errors.New("empty response from model")
	}
	return reply, nil
}

type listModelsResponse struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
	NextPageToken string `json:"nextPageToken"`
}

// ListModels returns the names of the models that support generateContent,
// following every result page.
func (a *Analyzer) ListModels(ctx context.Context) ([]string, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}
	var names []string
	token := ""
	for {
		path := "/v1beta/models"
		if token != "" {
			path += "?pageToken=" + url.QueryEscape(token)
		}
		data, err := a.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, errors.Wrap(err, "listing models")
		}
		var page listModelsResponse
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, errors.Wrap(err, "decoding model list")
		}
		for _, m := range page.Models {
			if lo.Contains(m.SupportedGenerationMethods, "generateContent") {
				names = append(names, m.Name)
			}
		}
		if page.NextPageToken == "" || page.NextPageToken == token {
			return names, nil
		}
		token = page.NextPageToken
	}
}
