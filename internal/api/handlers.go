package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"truthai/common/models"
	"truthai/internal/analysis"
	"truthai/internal/classify"
	"truthai/internal/fault"
	"truthai/internal/pipeline"
	"truthai/internal/vectorize"
)

const textSampleLen = 200

type handler struct {
	svc      *pipeline.Service
	analyzer *analysis.Analyzer
	logger   *zap.SugaredLogger
}

// Health returns the /health handler for service.
func Health(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{Status: "OK", Service: service})
	}
}

// Error writes an ErrorResponse with the given status.
func Error(c *gin.Context, status int, message string, err error) {
	resp := models.ErrorResponse{Status: status, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

// predict handles POST /predict
func (h *handler) predict(c *gin.Context) {
	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid prediction request", err)
		return
	}
	req.ApplyDefaults()

	res, err := h.svc.Predict(c.Request.Context(), req.Vectorizer, req.Classifier, req.Text)
	if err != nil {
		status, message := classifyError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Errorw("prediction failed", "vectorizer", req.Vectorizer, "classifier", req.Classifier, "error", err)
		}
		Error(c, status, message, err)
		return
	}

	c.JSON(http.StatusOK, models.PredictionResponse{
		ID:         uuid.NewString(),
		Label:      int(res.Label),
		Category:   res.Category(),
		Confidence: res.Confidence,
		Vectorizer: string(res.Key.Vectorizer),
		Classifier: string(res.Key.Classifier),
		TextSample: models.TextSample(req.Text, textSampleLen),
		URL:        req.URL,
	})
}

// listModels handles GET /models
func (h *handler) listModels(c *gin.Context) {
	realDocs, fakeDocs := h.svc.Corpus().Counts()
	resp := models.ModelsResponse{
		CorpusSize:    h.svc.Corpus().Len(),
		RealDocuments: realDocs,
		FakeDocuments: fakeDocs,
		Vectorizers:   lo.Map(vectorize.Kinds, func(k vectorize.Kind, _ int) string { return string(k) }),
		Classifiers:   lo.Map(classify.Kinds, func(k classify.Kind, _ int) string { return string(k) }),
	}
	for _, st := range h.svc.Models() {
		info := models.ModelInfo{
			Vectorizer: string(st.Key.Vectorizer),
			Classifier: string(st.Key.Classifier),
		}
		if f := st.Fitted; f != nil {
			info.Fitted = true
			info.Documents = f.Documents
			info.VocabularySize = f.VocabularySize
			info.TrainedAt = f.TrainedAt.UTC().Format(time.RFC3339)
			info.TrainMillis = f.TrainDuration.Milliseconds()
		}
		resp.Models = append(resp.Models, info)
	}
	c.JSON(http.StatusOK, resp)
}

// analyze handles POST /analyze
func (h *handler) analyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid analysis request", err)
		return
	}
	if err := analysis.CheckText(req.Text); err != nil {
		Error(c, http.StatusBadRequest, "Text too short for analysis", err)
		return
	}
	c.JSON(http.StatusOK, h.analyzer.Analyze(c.Request.Context(), req.Text, req.MLPrediction))
}

// analyzerStatus handles GET /analyze/status
func (h *handler) analyzerStatus(c *gin.Context) {
	status := models.AnalyzerStatus{Configured: h.analyzer.Configured(), Model: h.analyzer.Model()}
	reply, err := h.analyzer.Ping(c.Request.Context())
	if err != nil {
		status.Message = err.Error()
		c.JSON(http.StatusOK, status)
		return
	}
	status.Connected = true
	status.Message = reply
	if status.Models, err = h.analyzer.ListModels(c.Request.Context()); err != nil {
		h.logger.Warnw("listing models failed", "error", err)
	}
	c.JSON(http.StatusOK, status)
}

func classifyError(err error) (int, string) {
	switch {
	case fault.IsConfig(err):
		return http.StatusBadRequest, "Unsupported model selection"
	case errors.Is(err, fault.ErrEmptyInput):
		return http.StatusBadRequest, "Text must not be empty"
	case fault.IsTraining(err):
		return http.StatusInternalServerError, "Model training failed"
	default:
		return http.StatusInternalServerError, "Prediction failed"
	}
}
