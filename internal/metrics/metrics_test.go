package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/quiz/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", m.Handler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quiz/abc", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/quiz/:id", "404")); got != 2 {
		t.Fatalf("expected 2 requests counted, got %v", got)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("exposition missing http_requests_total")
	}
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.QuizGenerated()
	m.SubmissionGraded(true, 30)
	m.SubmissionGraded(false, 5)
	m.SubmissionGraded(false, 0)
	m.StreakFrozen()

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"quizzes", testutil.ToFloat64(m.quizzes), 1},
		{"pass", testutil.ToFloat64(m.submissions.WithLabelValues("pass")), 1},
		{"fail", testutil.ToFloat64(m.submissions.WithLabelValues("fail")), 2},
		{"points", testutil.ToFloat64(m.points), 35},
		{"freezes", testutil.ToFloat64(m.freezes), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
}
