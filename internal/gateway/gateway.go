// Package gateway fronts the classifier and corpus indexer services behind a
// single /api/v1 surface.
package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"truthai/common/models"
	"truthai/internal/api"
)

// ServiceName is reported by the gateway health endpoint.
const ServiceName = "api-gateway"

// Upstreams holds the base URLs of the proxied services.
type Upstreams struct {
	Classifier string
	Indexer    string
}

// @title          TRUTH-AI API Gateway
// @version        1.0
// @description    API Gateway for the TRUTH-AI fake news classifier
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
// @host           localhost:8080
// @BasePath       /api/v1

// NewRouter builds the gateway router.
func NewRouter(up Upstreams, logger *zap.SugaredLogger, allowOrigins []string) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	classifier, err := parseUpstream(up.Classifier)
	if err != nil {
		return nil, errors.Wrap(err, "classifier upstream")
	}
	idx, err := parseUpstream(up.Indexer)
	if err != nil {
		return nil, errors.Wrap(err, "indexer upstream")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.CORS(allowOrigins))

	router.GET("/api/v1/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", api.Health(ServiceName))

	apiV1 := router.Group("/api/v1")
	{
		// @Summary      Classify a news text
		// @Description  Classify text as real or fake news with the selected pipeline
		// @Tags         predict
		// @Accept       json
		// @Produce      json
		// @Param        request body models.PredictionRequest true "Text and model selection"
		// @Success      200     {object} models.PredictionResponse
		// @Failure      400     {object} models.ErrorResponse
		// @Failure      500     {object} models.ErrorResponse
		// @Router       /predict [post]
		apiV1.POST("/predict", Proxy(classifier, "/predict", logger))

		// @Summary      List models
		// @Tags         predict
		// @Produce      json
		// @Success      200 {object} models.ModelsResponse
		// @Router       /models [get]
		apiV1.GET("/models", Proxy(classifier, "/models", logger))

		// @Summary      Secondary analysis
		// @Description  Ask the hosted language model for red flags and verification advice
		// @Tags         analyze
		// @Accept       json
		// @Produce      json
		// @Param        request body models.AnalysisRequest true "Text and optional classifier verdict"
		// @Success      200     {object} models.AnalysisResult
		// @Failure      400     {object} models.ErrorResponse
		// @Router       /analyze [post]
		apiV1.POST("/analyze", Proxy(classifier, "/analyze", logger))
		apiV1.GET("/analyze/status", Proxy(classifier, "/analyze/status", logger))

		// @Summary      Index a labeled document
		// @Tags         index
		// @Accept       json
		// @Produce      json
		// @Param        request body models.IndexRequest true "Labeled document"
		// @Success      200     {object} models.IndexResponse
		// @Failure      400     {object} models.ErrorResponse
		// @Router       /index [post]
		apiV1.POST("/index", Proxy(idx, "/index", logger))
		apiV1.POST("/index/bulk", Proxy(idx, "/index/bulk", logger))
		apiV1.GET("/index/:id", Proxy(idx, "/index", logger))
		apiV1.DELETE("/index/:id", Proxy(idx, "/index", logger))
	}
	return router, nil
}

func parseUpstream(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, errors.Errorf("no host in %q", raw)
	}
	return u, nil
}

// Proxy forwards the request to target. The path after the route's fixed
// prefix is appended to endpoint, so /api/v1/index/42 becomes /index/42.
func Proxy(target *url.URL, endpoint string, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxy := &httputil.ReverseProxy{
			Director: func(req *http.Request) {
				req.URL.Scheme = target.Scheme
				req.URL.Host = target.Host
				req.Host = target.Host

				path := strings.TrimPrefix(req.URL.Path, "/api/v1")
				path = strings.TrimPrefix(path, endpoint)
				req.URL.Path = strings.TrimRight(target.Path, "/") + endpoint + path
				req.URL.RawPath = ""

				logger.Debugw("forwarding request", "from", c.Request.URL.Path, "to", req.URL.String())
			},
			ModifyResponse: func(resp *http.Response) error {
				logger.Debugw("upstream response", "path", resp.Request.URL.Path, "status", resp.StatusCode)
				return nil
			},
			ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
				logger.Warnw("proxy error", "target", target.Host, "error", err)
				c.JSON(http.StatusBadGateway, models.ErrorResponse{
					Status:  http.StatusBadGateway,
					Message: "Failed to proxy request",
					Error:   err.Error(),
				})
			},
		}
		proxy.ServeHTTP(c.Writer, c.Request)
	}
}
