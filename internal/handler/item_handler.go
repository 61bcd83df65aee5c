package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/listman/internal/model"
)

// ItemServiceInterface は項目ハンドラーが必要とするサービスインターフェース。
type ItemServiceInterface interface {
	// AddItem は項目をリストへ追加する。
	AddItem(ctx context.Context, listID, title string, quantity int) (*model.Item, error)
	// ToggleItem は項目の完了状態を設定し、更新後の項目を返す。
	ToggleItem(ctx context.Context, listID string, itemID int64, done bool) (*model.Item, error)
	// DeleteItem は項目をリストから除去する。
	DeleteItem(ctx context.Context, listID string, itemID int64) error
}

// ItemHandler はリスト項目のHTTPハンドラー。
type ItemHandler struct {
	service ItemServiceInterface
}

// NewItemHandler はItemHandlerを生成する。
func NewItemHandler(service ItemServiceInterface) *ItemHandler {
	return &ItemHandler{service: service}
}

// addItemRequest は項目追加リクエストのボディ。
// nameフィールドが項目のtitleになる。
type addItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// toggleItemRequest は項目の完了状態更新リクエストのボディ。
type toggleItemRequest struct {
	Done bool `json:"done"`
}

// AddItem は項目をリストへ追加する。
// POST /api/lists/:listId/items
func (h *ItemHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	item, err := h.service.AddItem(r.Context(), listID, req.Name, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, item)
}

// ToggleItem は項目の完了状態を更新する。
// PUT /api/lists/:listId/items/:itemId
func (h *ItemHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")
	itemParam := chi.URLParam(r, "itemId")

	itemID, err := strconv.ParseInt(itemParam, 10, 64)
	if err != nil {
		// 整数でないidはどの項目にも一致しない
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewItemNotFoundError(itemParam))
		return
	}

	var req toggleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	item, err := h.service.ToggleItem(r.Context(), listID, itemID, req.Done)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, item)
}

// DeleteItem は項目をリストから削除する。
// 存在しない項目の削除も成功扱い（リスト不在のみ404）。
// DELETE /api/lists/:listId/items/:itemId
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")
	itemParam := chi.URLParam(r, "itemId")

	// 整数でないidはどの項目にも一致せず、pullはno-opで成功する
	itemID, _ := strconv.ParseInt(itemParam, 10, 64)

	if err := h.service.DeleteItem(r.Context(), listID, itemID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "Item deleted"})
}
