package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/listman/internal/middleware"
)

// HealthChecker はストアへの疎通確認インターフェース。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusRecorder    middleware.StatusRecorder

	// 監視
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// サービス
	ListService   ListServiceInterface
	ItemService   ItemServiceInterface
	MemberService MemberServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Identity → Logging → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	// IdentityはLoggingより先に適用し、ログにcaller_idを含められるようにする
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewIdentityMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddlewareWithMetrics(deps.Logger, deps.StatusRecorder))
	}

	listHandler := NewListHandler(deps.ListService)
	itemHandler := NewItemHandler(deps.ItemService)
	memberHandler := NewMemberHandler(deps.MemberService)

	// --- 監視用ルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Route("/api/lists", func(r chi.Router) {
			r.Get("/", listHandler.ListLists)

			// POST /api/lists - リスト作成（書き込み専用レート制限を追加）
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.WriteMiddleware()).Post("/", listHandler.CreateList)
			} else {
				r.Post("/", listHandler.CreateList)
			}

			r.Route("/{listId}", func(r chi.Router) {
				r.Get("/", listHandler.GetList)
				r.Patch("/archive", listHandler.Archive)
				r.Delete("/", listHandler.DeleteList)

				// 項目管理
				r.Route("/items", func(r chi.Router) {
					r.Post("/", itemHandler.AddItem)
					r.Put("/{itemId}", itemHandler.ToggleItem)
					r.Delete("/{itemId}", itemHandler.DeleteItem)
				})

				// メンバー管理
				r.Route("/members", func(r chi.Router) {
					r.Post("/", memberHandler.AddMember)
					r.Delete("/{memberId}", memberHandler.RemoveMember)
				})
			})
		})
	})

	return r
}

// NewHealthHandler はストアへの疎通を確認するヘルスチェックハンドラーを返す。
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Ping(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
