// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, list, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeAuthRequired  = "AUTH_REQUIRED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeListNotFound  = "LIST_NOT_FOUND"
	ErrCodeItemNotFound  = "ITEM_NOT_FOUND"
	ErrCodeInvalidFilter = "INVALID_FILTER"
)

// NewValidationError は必須入力の欠落・空文字エラーを生成する。
func NewValidationError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("%s は必須です。", field),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewAuthRequiredError は呼び出し元の識別子が未指定の場合のエラーを生成する。
func NewAuthRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthRequired,
		Message:  "ユーザーIDが指定されていません。",
		Category: "auth",
		Action:   "x-user-idヘッダーまたはリクエストボディでownerIdを指定してください。",
	}
}

// NewForbiddenError は所有者以外による操作を拒否するエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作はリストの所有者のみが実行できます。",
		Category: "auth",
		Action:   "リストの所有者アカウントで操作してください。",
	}
}

// NewListNotFoundError はリスト未検出エラーを生成する。
func NewListNotFoundError(listID string) *APIError {
	return &APIError{
		Code:     ErrCodeListNotFound,
		Message:  fmt.Sprintf("指定されたリストが見つかりません: %s", listID),
		Category: "list",
		Action:   "リストIDを確認してください。",
	}
}

// NewItemNotFoundError は項目未検出エラーを生成する。
func NewItemNotFoundError(itemID string) *APIError {
	return &APIError{
		Code:     ErrCodeItemNotFound,
		Message:  fmt.Sprintf("指定された項目が見つかりません: %s", itemID),
		Category: "list",
		Action:   "項目IDを確認してください。",
	}
}

// NewInvalidFilterError は無効なarchivedフィルタエラーを生成する。
func NewInvalidFilterError(filter string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("無効なフィルタです: %s", filter),
		Category: "validation",
		Action:   "archivedには true または false を指定してください。",
	}
}
