package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("orcamento")
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/quotes/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("orcamento", http.MethodGet, "/quotes/:id", "404"))
	if got != 2 {
		t.Fatalf("expected 2 requests on the route template, got %v", got)
	}
	if got := testutil.ToFloat64(m.statusCategories.WithLabelValues("orcamento", "4xx")); got != 2 {
		t.Fatalf("expected 2 4xx responses, got %v", got)
	}
}

func TestDomainCountersAreExposed(t *testing.T) {
	m := New("orcamento")
	m.QuoteSubmitted("succeeded")
	m.QuoteSubmitted("invalid")
	m.WebhookNotified("failed")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	for _, want := range []string{
		`quotes_submissions_total{outcome="succeeded"} 1`,
		`quotes_submissions_total{outcome="invalid"} 1`,
		`webhook_notifications_total{outcome="failed"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in exposition output", want)
		}
	}
}
