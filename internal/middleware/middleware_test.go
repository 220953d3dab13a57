package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func newTestEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/", handlers...)
	return r
}

func get(r *gin.Engine, header string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireAuthWithRole(t *testing.T) {
	SetJWTSecret("middleware-test-secret")
	r := newTestEngine(RequireAuthWithRole("admin"))

	admin, _ := GenerateToken(1, "admin")
	driver, _ := GenerateToken(2, "driver")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 3,
		"role":    "admin",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	expiredStr, _ := expired.SignedString([]byte("middleware-test-secret"))

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"})
	foreignStr, _ := foreign.SignedString([]byte("some-other-secret"))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + admin, http.StatusUnauthorized},
		{"expired", "Bearer " + expiredStr, http.StatusUnauthorized},
		{"wrong key", "Bearer " + foreignStr, http.StatusUnauthorized},
		{"wrong role", "Bearer " + driver, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := get(r, tt.header); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := newTestEngine(rl.Limit())

	for i := 0; i < 2; i++ {
		if got := get(r, ""); got != http.StatusNoContent {
			t.Fatalf("request %d within burst: status %d", i, got)
		}
	}
	if got := get(r, ""); got != http.StatusTooManyRequests {
		t.Fatalf("request over burst: status %d, want 429", got)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4242"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("second client: status %d", w.Code)
	}
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	start := time.Now()
	rl.getLimiter("192.0.2.1", start)
	rl.getLimiter("192.0.2.2", start.Add(rl.idle+time.Second))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["192.0.2.1"]; ok {
		t.Error("idle visitor was not evicted")
	}
	if len(rl.visitors) != 1 {
		t.Errorf("expected 1 visitor, got %d", len(rl.visitors))
	}
}

func TestEnableCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := EnableCORS(next, []string{"https://admin.shuttle.test"})

	req := httptest.NewRequest(http.MethodOptions, "/admin/templates/1", nil)
	req.Header.Set("Origin", "https://admin.shuttle.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://admin.shuttle.test" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/stops", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("simple request status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin was allowed: %q", got)
	}
}

func TestRoleCheckRunsBeforeHandler(t *testing.T) {
	SetJWTSecret("middleware-test-secret")
	gin.SetMode(gin.TestMode)

	var ran bool
	r := gin.New()
	r.DELETE("/stops/1", RequireAuthWithRole("admin"), func(c *gin.Context) {
		ran = true
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})

	tests := []struct {
		role    string
		want    int
		wantRan bool
	}{
		{"dispatcher", http.StatusForbidden, false},
		{"admin", http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			ran = false
			token, err := GenerateToken(7, tt.role)
			if err != nil {
				t.Fatalf("GenerateToken failed: %v", err)
			}
			req := httptest.NewRequest(http.MethodDelete, "/stops/1", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if ran != tt.wantRan {
				t.Errorf("handler ran = %t, want %t", ran, tt.wantRan)
			}
		})
	}
}
