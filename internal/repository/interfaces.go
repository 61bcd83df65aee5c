// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/listman/internal/model"
)

// ListRepository はリスト集約の永続化インターフェース。
// 各メソッドは単一のリストドキュメントを対象とし、
// ストアのドキュメント単位の原子性に依存する。
type ListRepository interface {
	// FindByID は指定IDのリストを取得する。見つからない場合はnilを返す。
	// IDはストアのネイティブキー形式でも生文字列でも受け付ける。
	FindByID(ctx context.Context, id string) (*model.List, error)

	// List はarchivedフィルタに一致するリストの一覧をupdatedAt降順で返す。
	// archivedがnilの場合はフィルタなしで全件を返す。
	List(ctx context.Context, archived *bool) ([]*model.List, error)

	// Insert は新規リストを永続化し、ストアが採番したIDをlist.IDに設定する。
	Insert(ctx context.Context, list *model.List) error

	// SetArchived はリストのarchivedフラグとupdatedAtを更新する。
	// リストが存在しない場合はfalseを返す。
	SetArchived(ctx context.Context, id string, archived bool, now time.Time) (bool, error)

	// Delete はリストを埋め込み項目・メンバーごと削除する。
	// リストが存在しない場合はfalseを返す。
	Delete(ctx context.Context, id string) (bool, error)

	// PushItem は項目をitems配列へ原子的に追加し、updatedAtを更新する。
	// リストが存在しない場合はfalseを返す。
	PushItem(ctx context.Context, id string, item *model.Item, now time.Time) (bool, error)

	// SetItemCompleted は指定項目のisCompletedとリストのupdatedAtを
	// 1回のポジショナル更新で原子的に設定し、更新後の項目を返す。
	// リストまたは項目が存在しない場合はnilを返す。
	SetItemCompleted(ctx context.Context, id string, itemID int64, done bool, now time.Time) (*model.Item, error)

	// PullItem は指定idの項目をitems配列から原子的に除去し、updatedAtを更新する。
	// リストが存在しない場合はfalseを返す。項目が存在しない場合は成功扱い。
	PullItem(ctx context.Context, id string, itemID int64, now time.Time) (bool, error)

	// PushMember はメンバーをmembers配列へ原子的に追加し、updatedAtを更新する。
	// リストが存在しない場合はfalseを返す。
	PushMember(ctx context.Context, id string, member *model.Member, now time.Time) (bool, error)

	// PullMember は指定userIdのメンバーをmembers配列から原子的に除去し、
	// updatedAtを更新する。リストが存在しない場合はfalseを返す。
	// メンバーが存在しない場合は成功扱い。
	PullMember(ctx context.Context, id string, userID string, now time.Time) (bool, error)
}
