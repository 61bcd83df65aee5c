// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/listman/internal/middleware"
	"github.com/hitoshi/listman/internal/model"
)

// ListServiceInterface はリストハンドラーが必要とするサービスインターフェース。
type ListServiceInterface interface {
	// Create は新規リストを作成する。
	Create(ctx context.Context, name, ownerID, ownerName string) (*model.List, error)
	// Get は指定IDのリストを取得する。
	Get(ctx context.Context, listID string) (*model.List, error)
	// List はarchivedフィルタに一致するリスト一覧をupdatedAt降順で返す。
	List(ctx context.Context, archived *bool) ([]*model.List, error)
	// SetArchived はリストのアーカイブ状態を設定する。
	SetArchived(ctx context.Context, listID, callerID string, archived bool) (bool, error)
	// Delete はリストを削除する。
	Delete(ctx context.Context, listID, callerID string) error
}

// ListHandler はリスト管理のHTTPハンドラー。
type ListHandler struct {
	service ListServiceInterface
}

// NewListHandler はListHandlerを生成する。
func NewListHandler(service ListServiceInterface) *ListHandler {
	return &ListHandler{service: service}
}

// createListRequest はリスト作成リクエストのボディ。
type createListRequest struct {
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	OwnerName string `json:"ownerName"`
}

// archiveRequest はアーカイブ状態更新リクエストのボディ。
// ownerIdはx-user-idヘッダー未指定時のフォールバック。
type archiveRequest struct {
	Archived bool   `json:"archived"`
	OwnerID  string `json:"ownerId"`
}

// deleteListRequest はリスト削除リクエストのボディ（省略可）。
type deleteListRequest struct {
	OwnerID string `json:"ownerId"`
}

// archiveResponse はアーカイブ状態更新のレスポンス。
type archiveResponse struct {
	Archived bool `json:"archived"`
}

// messageResponse は削除確認等のメッセージレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateList は新規リストを作成する。
// POST /api/lists
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	list, err := h.service.Create(r.Context(), req.Name, req.OwnerID, req.OwnerName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, list)
}

// ListLists はリスト一覧を取得する。
// GET /api/lists?archived=true|false
func (h *ListHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	archivedParam := r.URL.Query().Get("archived")

	var archived *bool
	switch archivedParam {
	case "":
		archived = nil
	case "true":
		v := true
		archived = &v
	case "false":
		v := false
		archived = &v
	default:
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidFilterError(archivedParam))
		return
	}

	lists, err := h.service.List(r.Context(), archived)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, lists)
}

// GetList はリスト詳細を取得する。
// GET /api/lists/:listId
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")

	list, err := h.service.Get(r.Context(), listID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, list)
}

// Archive はリストのアーカイブ状態を更新する。
// PATCH /api/lists/:listId/archive
func (h *ListHandler) Archive(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")

	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	callerID := resolveCallerID(r, req.OwnerID)

	archived, err := h.service.SetArchived(r.Context(), listID, callerID, req.Archived)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, archiveResponse{Archived: archived})
}

// DeleteList はリストを削除する。
// DELETE /api/lists/:listId
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")

	// DELETEのボディは省略可。デコード失敗は識別子未指定として扱う。
	var req deleteListRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	callerID := resolveCallerID(r, req.OwnerID)

	if err := h.service.Delete(r.Context(), listID, callerID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "List deleted"})
}

// resolveCallerID は呼び出し元の識別子を解決する。
// x-user-idヘッダーを優先し、未指定の場合はボディのownerIdを使用する。
func resolveCallerID(r *http.Request, bodyOwnerID string) string {
	if callerID, err := middleware.CallerIDFromContext(r.Context()); err == nil {
		return callerID
	}
	return bodyOwnerID
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSONResponse(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeInvalidRequestResponse はリクエストボディ解析失敗のレスポンスを書き込む。
func writeInvalidRequestResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidFilter:
		return http.StatusBadRequest
	case model.ErrCodeAuthRequired:
		return http.StatusBadRequest
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeListNotFound, model.ErrCodeItemNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
