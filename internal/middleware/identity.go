// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
)

// callerIDHeader は呼び出し元の識別子を運ぶHTTPヘッダー名。
// 認証は外部で解決済みで、このサービスは値を信頼する。
const callerIDHeader = "X-User-Id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// callerIDContextKey はリクエストコンテキストに呼び出し元識別子を格納するためのキー。
var callerIDContextKey = contextKey("caller_id")

// NewIdentityMiddleware はx-user-idヘッダーから呼び出し元の識別子を読み取り、
// リクエストコンテキストに注入するミドルウェアを返す。
// ヘッダーが未指定でもリクエストは拒否しない（読み取りは無制限で、
// 変更操作の識別子要求はサービス層のガードが判断する）。
func NewIdentityMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callerID := r.Header.Get(callerIDHeader)
			if callerID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), callerIDContextKey, callerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerIDFromContext はリクエストコンテキストから呼び出し元の識別子を取得する。
func CallerIDFromContext(ctx context.Context) (string, error) {
	callerID, ok := ctx.Value(callerIDContextKey).(string)
	if !ok || callerID == "" {
		return "", fmt.Errorf("caller ID not found in context")
	}
	return callerID, nil
}

// ContextWithCallerID はコンテキストに呼び出し元の識別子を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithCallerID(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerIDContextKey, callerID)
}
