package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	r := gin.New()
	r.GET("/whoami", JWTAuthMiddleware(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("subject"))
	})

	t.Run("missing header", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := utils.GenerateToken("other", "c1", time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		if w := serve(r, req); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, err := utils.GenerateToken(secret, "c1", -time.Minute)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		if w := serve(r, req); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("valid", func(t *testing.T) {
		token, err := utils.GenerateToken(secret, "c1", time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(r, req)
		if w.Code != http.StatusOK || w.Body.String() != "c1" {
			t.Fatalf("expected 200 c1, got %d %q", w.Code, w.Body.String())
		}
	})
}

func TestJWTAuthMiddlewareDisabled(t *testing.T) {
	r := gin.New()
	r.GET("/open", JWTAuthMiddleware(""), func(c *gin.Context) {
		c.String(http.StatusOK, "subject=%s", c.GetString("subject"))
	})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/open", nil))
	if w.Code != http.StatusOK || w.Body.String() != "subject=" {
		t.Fatalf("expected passthrough, got %d %q", w.Code, w.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		return serve(r, req).Code
	}

	for i := 0; i < 2; i++ {
		if code := request("192.0.2.1"); code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i, code)
		}
	}
	if code := request("192.0.2.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", code)
	}
	if code := request("192.0.2.2"); code != http.StatusNoContent {
		t.Fatalf("other clients keep their own budget, got %d", code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": " 203.0.113.9 , 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.10"}, "10.0.0.2:1234", "203.0.113.10"},
		{"garbage header", map[string]string{"X-Forwarded-For": "nonsense"}, "10.0.0.2:1234", "10.0.0.2"},
		{"remote only", nil, "10.0.0.3:80", "10.0.0.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			if got := clientIP(c); got != tt.want {
				t.Fatalf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	metrics := utils.NewMetrics("test", prometheus.NewRegistry())
	r := gin.New()
	r.Use(RequestID(nil), RequestLogger(nil, metrics))
	r.GET("/items/:id", func(c *gin.Context) {
		if _, ok := c.Get("logger"); !ok {
			t.Errorf("expected request logger in context")
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/7", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := serve(r, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc" {
		t.Fatalf("expected propagated request id, got %q", got)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/items/8", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}

	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("GET", "/items/:id", "200")); got != 2 {
		t.Fatalf("expected 2 requests on the route template, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Fatalf("expected 1 unmatched request, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.InFlightGauge); got != 0 {
		t.Fatalf("expected no in-flight requests, got %v", got)
	}
}
