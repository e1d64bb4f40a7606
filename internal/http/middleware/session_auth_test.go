package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/situacio-backend/internal/platform/ctxutil"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

func newAuth(t *testing.T, key string) *SessionAuth {
	t.Helper()
	a, err := NewSessionAuth(logger.Nop(), key, time.Hour)
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}
	return a
}

func protectedEngine(a *SessionAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(a.RequireSession())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.SessionID(c.Request.Context()))
	})
	return r
}

func TestSessionAuthRoundTrip(t *testing.T) {
	a := newAuth(t, "k1")
	tok, exp, err := a.Issue("s-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", exp)
	}

	r := protectedEngine(a)
	for _, req := range []*http.Request{
		func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			return req
		}(),
		httptest.NewRequest(http.MethodGet, "/whoami?token="+tok, nil),
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != "s-123" {
			t.Fatalf("want=200 s-123 got=%d %s", rec.Code, rec.Body.String())
		}
	}
}

func TestSessionAuthRejects(t *testing.T) {
	a := newAuth(t, "k1")
	other := newAuth(t, "k2")
	foreign, _, _ := other.Issue("s-1")

	expired := newAuth(t, "k1")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.Issue("s-1")

	r := protectedEngine(a)
	for name, header := range map[string]string{
		"missing": "",
		"foreign": "Bearer " + foreign,
		"expired": "Bearer " + stale,
		"garbage": "Bearer not-a-jwt",
	} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: want=%d got=%d", name, http.StatusUnauthorized, rec.Code)
		}
	}
}

func TestNewSessionAuthRequiresKey(t *testing.T) {
	if _, err := NewSessionAuth(logger.Nop(), " ", time.Hour); err == nil {
		t.Fatalf("want error for empty key")
	}
}
