package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"truthai/common/models"
)

var (
	riskLevels  = []string{"LOW", "MEDIUM", "HIGH"}
	predictions = []string{"REAL", "LIKELY_REAL", "UNCERTAIN", "LIKELY_FAKE", "FAKE"}

	suspiciousPhrases = []string{
		"unnamed sources",
		"officials refuse to comment",
		"shocking discovery",
		"doctors hate this",
		"they don't want you to know",
		"viral post",
		"forward this message",
		"share before it's deleted",
	}
)

// rawResult mirrors the JSON the model is asked for. Pointers distinguish
// absent fields from zero values.
type rawResult struct {
	ConfidenceScore         *float64                      `json:"confidence_score"`
	RiskLevel               *string                       `json:"risk_level"`
	Prediction              *string                       `json:"prediction"`
	RedFlags                []models.RedFlag              `json:"red_flags"`
	CredibilityIndicators   []models.CredibilityIndicator `json:"credibility_indicators"`
	EducationalInsights     []string                      `json:"educational_insights"`
	VerificationSuggestions []string                      `json:"verification_suggestions"`
	Summary                 *string                       `json:"summary"`
}

// ParseReply extracts the JSON object between the first '{' and the last
// '}' of reply and validates it. Replies without usable JSON are scored with
// a phrase heuristic instead.
func ParseReply(reply string, now time.Time) models.AnalysisResult {
	reply = strings.TrimSpace(reply)
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return fromText(reply, now)
	}
	var raw rawResult
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return fromText(reply, now)
	}
	return validate(raw, now)
}

func validate(raw rawResult, now time.Time) models.AnalysisResult {
	res := models.AnalysisResult{
		ConfidenceScore:         75,
		RiskLevel:               "MEDIUM",
		Prediction:              "UNCERTAIN",
		RedFlags:                nonNil(raw.RedFlags),
		CredibilityIndicators:   nonNil(raw.CredibilityIndicators),
		EducationalInsights:     nonNil(raw.EducationalInsights),
		VerificationSuggestions: nonNil(raw.VerificationSuggestions),
		Summary:                 "Analysis completed with moderate confidence.",
		AnalysisTimestamp:       now.Unix(),
	}
	if raw.ConfidenceScore != nil {
		res.ConfidenceScore = int(math.Round(math.Min(100, math.Max(0, *raw.ConfidenceScore))))
	}
	if raw.RiskLevel != nil && lo.Contains(riskLevels, strings.ToUpper(*raw.RiskLevel)) {
		res.RiskLevel = strings.ToUpper(*raw.RiskLevel)
	}
	if raw.Prediction != nil && lo.Contains(predictions, strings.ToUpper(*raw.Prediction)) {
		res.Prediction = strings.ToUpper(*raw.Prediction)
	}
	if raw.Summary != nil {
		res.Summary = *raw.Summary
	}
	return res
}

func fromText(text string, now time.Time) models.AnalysisResult {
	res := models.AnalysisResult{
		ConfidenceScore:       70,
		RiskLevel:             "MEDIUM",
		Prediction:            "UNCERTAIN",
		RedFlags:              []models.RedFlag{},
		CredibilityIndicators: []models.CredibilityIndicator{},
		EducationalInsights: []string{
			"Look for specific sources and official confirmation",
			"Be skeptical of sensational claims",
			"Cross-reference with multiple reliable sources",
		},
		VerificationSuggestions: []string{
			"Check official websites and press releases",
			"Look for reporting by established news organizations",
			"Verify any statistics or claims with original sources",
		},
		Summary:           models.TextSample(text, 200),
		AnalysisTimestamp: now.Unix(),
	}
	lower := strings.ToLower(text)
	for _, phrase := range suspiciousPhrases {
		if strings.Contains(lower, phrase) {
			res.RedFlags = append(res.RedFlags, models.RedFlag{
				Flag:        "Contains suspicious phrase: '" + phrase + "'",
				Explanation: "This type of language is often used in misinformation",
				Severity:    "MEDIUM",
			})
			res.ConfidenceScore = min(90, res.ConfidenceScore+10)
			res.RiskLevel = "HIGH"
		}
	}
	if res.RiskLevel == "HIGH" {
		res.Prediction = "LIKELY_FAKE"
	}
	return res
}

// Fallback is the result returned when the model cannot be reached.
func Fallback(now time.Time) models.AnalysisResult {
	return models.AnalysisResult{
		ConfidenceScore:       50,
		RiskLevel:             "MEDIUM",
		Prediction:            "UNCERTAIN",
		RedFlags:              []models.RedFlag{},
		CredibilityIndicators: []models.CredibilityIndicator{},
		EducationalInsights: []string{
			"Always verify information from multiple sources",
			"Look for official confirmations and press releases",
			"Be cautious of emotionally charged language",
		},
		VerificationSuggestions: []string{
			"Check the original source of the information",
			"Look for corroboration from reliable news outlets",
			"Verify any claims with official authorities",
		},
		Summary:           "AI analysis temporarily unavailable. Please verify manually.",
		AnalysisTimestamp: now.Unix(),
		Fallback:          true,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
