package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/listman/internal/model"
)

// MemberServiceInterface はメンバーハンドラーが必要とするサービスインターフェース。
type MemberServiceInterface interface {
	// AddMember はメンバーをリストへ追加する。
	AddMember(ctx context.Context, listID, userID, name string) (*model.Member, error)
	// RemoveMember はメンバーをリストから除去する。
	RemoveMember(ctx context.Context, listID, userID string) error
}

// MemberHandler はリストメンバーのHTTPハンドラー。
type MemberHandler struct {
	service MemberServiceInterface
}

// NewMemberHandler はMemberHandlerを生成する。
func NewMemberHandler(service MemberServiceInterface) *MemberHandler {
	return &MemberHandler{service: service}
}

// addMemberRequest はメンバー追加リクエストのボディ。
// userIdが未指定の場合は新規の識別子が生成される。
type addMemberRequest struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
}

// AddMember はメンバーをリストへ追加する。
// POST /api/lists/:listId/members
func (h *MemberHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	member, err := h.service.AddMember(r.Context(), listID, req.UserID, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, member)
}

// RemoveMember はメンバーをリストから削除する。
// 存在しないメンバーの削除も成功扱い（リスト不在のみ404）。
// DELETE /api/lists/:listId/members/:memberId
func (h *MemberHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")
	memberID := chi.URLParam(r, "memberId")

	if err := h.service.RemoveMember(r.Context(), listID, memberID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "Member removed"})
}
