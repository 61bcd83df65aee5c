package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/listman/internal/model"
)

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// newTestRouter は全サービスをモックで差し替えたルーターを生成するヘルパー。
func newTestRouter(listSvc *mockListService, itemSvc *mockItemService, memberSvc *mockMemberService) http.Handler {
	if listSvc == nil {
		listSvc = &mockListService{}
	}
	if itemSvc == nil {
		itemSvc = &mockItemService{}
	}
	if memberSvc == nil {
		memberSvc = &mockMemberService{}
	}
	return NewRouter(&RouterDeps{
		CORSAllowedOrigin: "http://localhost:3000",
		HealthChecker:     &mockHealthChecker{},
		ListService:       listSvc,
		ItemService:       itemSvc,
		MemberService:     memberSvc,
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %q, want %q", resp["status"], "ok")
	}
}

func TestRouter_Health_StoreUnavailable(t *testing.T) {
	router := NewRouter(&RouterDeps{
		HealthChecker: &mockHealthChecker{
			pingFn: func(ctx context.Context) error {
				return errors.New("connection refused")
			},
		},
		ListService:   &mockListService{},
		ItemService:   &mockItemService{},
		MemberService: &mockMemberService{},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

// x-user-idヘッダーがミドルウェア経由でサービス層へ届くことを検証する。
func TestRouter_IdentityHeaderFlowsToService(t *testing.T) {
	var gotCallerID string
	listSvc := &mockListService{
		deleteFn: func(ctx context.Context, listID, callerID string) error {
			gotCallerID = callerID
			return nil
		},
	}
	router := newTestRouter(listSvc, nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/lists/list-1", nil)
	req.Header.Set("X-User-Id", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotCallerID != "user-1" {
		t.Errorf("callerID = %q, want %q", gotCallerID, "user-1")
	}
}

// ネストしたURLパラメータ（listId・itemId）がハンドラーへ届くことを検証する。
func TestRouter_NestedItemRoute(t *testing.T) {
	var gotListID string
	var gotItemID int64
	itemSvc := &mockItemService{
		toggleItemFn: func(ctx context.Context, listID string, itemID int64, done bool) (*model.Item, error) {
			gotListID = listID
			gotItemID = itemID
			return &model.Item{ID: itemID, IsCompleted: done}, nil
		},
	}
	router := newTestRouter(nil, itemSvc, nil)

	body := bytes.NewBufferString(`{"done":true}`)
	req := httptest.NewRequest(http.MethodPut, "/api/lists/abc123/items/42", body)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotListID != "abc123" {
		t.Errorf("listID = %q, want %q", gotListID, "abc123")
	}
	if gotItemID != 42 {
		t.Errorf("itemID = %d, want 42", gotItemID)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

type recordingStatusRecorder struct {
	statuses []int
}

func (r *recordingStatusRecorder) RecordHTTPStatus(statusCode int) {
	r.statuses = append(r.statuses, statusCode)
}

// ルーター経由のリクエストでHTTPステータスがメトリクスへ記録されることを検証する。
func TestRouter_RecordsHTTPStatus(t *testing.T) {
	rec := &recordingStatusRecorder{}
	router := NewRouter(&RouterDeps{
		Logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
		StatusRecorder: rec,
		HealthChecker:  &mockHealthChecker{},
		ListService: &mockListService{
			getFn: func(ctx context.Context, listID string) (*model.List, error) {
				return nil, model.NewListNotFoundError(listID)
			},
		},
		ItemService:   &mockItemService{},
		MemberService: &mockMemberService{},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/lists/missing", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if len(rec.statuses) != 2 {
		t.Fatalf("recorded statuses = %v, want 2 entries", rec.statuses)
	}
	if rec.statuses[0] != http.StatusOK {
		t.Errorf("statuses[0] = %d, want %d", rec.statuses[0], http.StatusOK)
	}
	if rec.statuses[1] != http.StatusNotFound {
		t.Errorf("statuses[1] = %d, want %d", rec.statuses[1], http.StatusNotFound)
	}
}

// セキュリティヘッダーとCORSヘッダーが全レスポンスに付与されることを検証する。
func TestRouter_CommonHeaders(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
}
