package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	Register()
	Register()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/v1/quizzes/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", Handler())

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/quizzes/"+id, nil))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `quizbuddy_http_requests_total{endpoint="/v1/quizzes/:id",method="GET",status="200"} 2`
	if !strings.Contains(w.Body.String(), want) {
		t.Fatalf("metrics output missing %q", want)
	}
}
