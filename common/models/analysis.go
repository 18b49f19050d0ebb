package models

// AnalysisRequest represents a request for a secondary opinion from the
// hosted language model
type AnalysisRequest struct {
	Text         string `json:"text" binding:"required"`
	MLPrediction string `json:"ml_prediction"`
}

// RedFlag is one warning sign found in the text
type RedFlag struct {
	Flag        string `json:"flag"`
	Explanation string `json:"explanation"`
	Severity    string `json:"severity"`
}

// CredibilityIndicator is a positive or negative credibility signal
type CredibilityIndicator struct {
	Indicator   string `json:"indicator"`
	Type        string `json:"type"`
	Explanation string `json:"explanation"`
}

// AnalysisResult is the structured secondary assessment
type AnalysisResult struct {
	ConfidenceScore         int                    `json:"confidence_score"`
	RiskLevel               string                 `json:"risk_level"`
	Prediction              string                 `json:"prediction"`
	RedFlags                []RedFlag              `json:"red_flags"`
	CredibilityIndicators   []CredibilityIndicator `json:"credibility_indicators"`
	EducationalInsights     []string               `json:"educational_insights"`
	VerificationSuggestions []string               `json:"verification_suggestions"`
	Summary                 string                 `json:"summary"`
	AnalysisTimestamp       int64                  `json:"analysis_timestamp"`
	Fallback                bool                   `json:"fallback"`
}

// AnalyzerStatus reports whether the hosted model can be reached
type AnalyzerStatus struct {
	Configured bool     `json:"configured"`
	Connected  bool     `json:"connected"`
	Model      string   `json:"model"`
	Message    string   `json:"message"`
	Models     []string `json:"models,omitempty"`
}
