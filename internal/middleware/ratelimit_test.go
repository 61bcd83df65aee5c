package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// testRateLimiterConfig はバーストを小さくしたテスト用の設定を返す。
func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    2,
		WriteRate:       rate.Limit(1.0 / 60.0),
		WriteBurst:      1,
		CleanupInterval: time.Minute,
	}
}

func TestRateLimiter_GeneralAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/lists", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}
}

func TestRateLimiter_GeneralRejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastCode int
	var lastRecorder *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/lists", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		lastCode = w.Code
		lastRecorder = w
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", lastCode, http.StatusTooManyRequests)
	}
	if lastRecorder.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429 response")
	}
}

// 呼び出し元ごとに独立したリミッターが使われることを検証する。
func TestRateLimiter_PerCallerIsolation(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.WriteMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(callerID string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/lists", nil)
		req = req.WithContext(ContextWithCallerID(req.Context(), callerID))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	// user-1はバースト(1)を使い切る
	if code := send("user-1"); code != http.StatusCreated {
		t.Errorf("user-1 first request: status = %d, want %d", code, http.StatusCreated)
	}
	if code := send("user-1"); code != http.StatusTooManyRequests {
		t.Errorf("user-1 second request: status = %d, want %d", code, http.StatusTooManyRequests)
	}

	// user-2は影響を受けない
	if code := send("user-2"); code != http.StatusCreated {
		t.Errorf("user-2 request: status = %d, want %d", code, http.StatusCreated)
	}

	if count := rl.WriteLimiterCount(); count != 2 {
		t.Errorf("write limiter count = %d, want 2", count)
	}
}

// 識別子がない場合はリモートアドレスがキーになることを検証する。
func TestLimiterKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/lists", nil)
	req.RemoteAddr = "10.0.0.1:12345"

	if key := limiterKey(req); key != "10.0.0.1" {
		t.Errorf("key = %q, want %q", key, "10.0.0.1")
	}

	req = req.WithContext(ContextWithCallerID(req.Context(), "user-1"))
	if key := limiterKey(req); key != "user-1" {
		t.Errorf("key = %q, want %q", key, "user-1")
	}
}

// 一般と書き込みのレート制限が独立に動作することを検証する。
func TestRateLimiter_GeneralAndWriteIndependent(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	writeHandler := rl.WriteMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	generalHandler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 書き込みのバースト(1)を使い切る
	req := httptest.NewRequest(http.MethodPost, "/api/lists", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	w := httptest.NewRecorder()
	writeHandler.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodPost, "/api/lists", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	w = httptest.NewRecorder()
	writeHandler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("write limit should be exhausted, status = %d", w.Code)
	}

	// 一般のレート制限は未消費のまま
	req = httptest.NewRequest(http.MethodGet, "/api/lists", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	w = httptest.NewRecorder()
	generalHandler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("general request: status = %d, want %d", w.Code, http.StatusOK)
	}
}
