package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.viam.com/test"

	"truthai/common/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoUpstream replies with the method and path it received.
func echoUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"method": r.Method, "path": r.URL.Path, "query": r.URL.RawQuery})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGatewayRoutes(t *testing.T) {
	classifier := echoUpstream(t)
	idx := echoUpstream(t)
	r, err := NewRouter(Upstreams{Classifier: classifier.URL, Indexer: strings.TrimPrefix(idx.URL, "http://")}, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	for _, tc := range []struct {
		method, path, want string
	}{
		{http.MethodPost, "/api/v1/predict", "/predict"},
		{http.MethodGet, "/api/v1/models", "/models"},
		{http.MethodPost, "/api/v1/analyze", "/analyze"},
		{http.MethodGet, "/api/v1/analyze/status", "/analyze/status"},
		{http.MethodPost, "/api/v1/index", "/index"},
		{http.MethodPost, "/api/v1/index/bulk", "/index/bulk"},
		{http.MethodGet, "/api/v1/index/abc", "/index/abc"},
		{http.MethodDelete, "/api/v1/index/abc", "/index/abc"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := serve(r, tc.method, tc.path)
			test.That(t, w.Code, test.ShouldEqual, http.StatusOK)

			var got map[string]string
			test.That(t, json.Unmarshal(w.Body.Bytes(), &got), test.ShouldBeNil)
			test.That(t, got["path"], test.ShouldEqual, tc.want)
			test.That(t, got["method"], test.ShouldEqual, tc.method)
		})
	}
}

func TestGatewayUpstreamDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	r, err := NewRouter(Upstreams{Classifier: down.URL, Indexer: down.URL}, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	w := serve(r, http.MethodPost, "/api/v1/predict")
	test.That(t, w.Code, test.ShouldEqual, http.StatusBadGateway)
	var resp models.ErrorResponse
	test.That(t, json.Unmarshal(w.Body.Bytes(), &resp), test.ShouldBeNil)
	test.That(t, resp.Message, test.ShouldEqual, "Failed to proxy request")
}

func TestGatewayHealth(t *testing.T) {
	r, err := NewRouter(Upstreams{Classifier: "localhost:8082", Indexer: "localhost:8083"}, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	w := serve(r, http.MethodGet, "/health")
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, w.Body.String(), test.ShouldContainSubstring, ServiceName)
}
