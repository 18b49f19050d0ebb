package analysis

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are an expert misinformation detection analyst. Analyze the following text for potential misinformation and provide educational insights.

%s

Text to analyze: %q

Please provide your analysis in this exact JSON format:
{
    "confidence_score": [number from 0-100],
    "risk_level": "[LOW/MEDIUM/HIGH]",
    "prediction": "[REAL/LIKELY_REAL/UNCERTAIN/LIKELY_FAKE/FAKE]",
    "red_flags": [
        {"flag": "specific red flag detected", "explanation": "why this is concerning", "severity": "[LOW/MEDIUM/HIGH]"}
    ],
    "credibility_indicators": [
        {"indicator": "positive or negative indicator", "type": "[POSITIVE/NEGATIVE]", "explanation": "what this means"}
    ],
    "educational_insights": ["Key learning point"],
    "verification_suggestions": ["How to fact-check this type of content"],
    "summary": "Brief explanation of why this content is likely real or fake"
}

Focus on identifying:
1. Vague or unnamed sources
2. Emotional manipulation techniques
3. Unverifiable claims
4. Missing attribution or official confirmation
5. Sensationalist language
6. Logical inconsistencies
7. Signs of financial or political manipulation

Provide specific, actionable educational content that helps users become better at identifying misinformation.`

func buildPrompt(text, mlPrediction string) string {
	var context string
	if p := strings.TrimSpace(mlPrediction); p != "" {
		context = "ML Model Prediction: " + p
	}
	return fmt.Sprintf(promptTemplate, context, text)
}
