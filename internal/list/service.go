// Package list は買い物リスト集約のドメインロジックを提供する。
package list

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/listman/internal/model"
	"github.com/hitoshi/listman/internal/repository"
)

// defaultOwnerName は作成者の表示名が未指定の場合のプレースホルダ。
const defaultOwnerName = "You"

// MetricsRecorder はドメイン操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordListCreated()
	RecordListDeleted()
	RecordItemMutation(op string)
	RecordMemberMutation(op string)
}

// Service は買い物リスト集約のサービス層。
// 作成・取得・一覧・アーカイブ・削除と、埋め込みコレクション
// （項目・メンバー）の変更操作を提供する。
// リクエスト間で集約をキャッシュせず、毎回ストアから読み直す。
type Service struct {
	repo    repository.ListRepository
	metrics MetricsRecorder

	// now は現在時刻を返す。テストで差し替える。
	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnil可（記録をスキップする）。
func NewService(repo repository.ListRepository, metrics MetricsRecorder) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
		now:     time.Now,
	}
}

// Create は新規リストを作成する。
// 作成者はrole=ownerの先頭メンバーとしてmembersに登録される。
// ownerNameが空の場合はプレースホルダ表示名を使用する。
func (s *Service) Create(ctx context.Context, name, ownerID, ownerName string) (*model.List, error) {
	if strings.TrimSpace(name) == "" {
		return nil, model.NewValidationError("name")
	}
	if ownerID == "" {
		return nil, model.NewValidationError("ownerId")
	}
	if ownerName == "" {
		ownerName = defaultOwnerName
	}

	now := s.now()
	list := &model.List{
		Name:      name,
		OwnerID:   ownerID,
		Archived:  false,
		CreatedAt: now,
		UpdatedAt: now,
		Members: []model.Member{
			{UserID: ownerID, Name: ownerName, Role: model.RoleOwner, JoinedAt: now},
		},
		Items: []model.Item{},
	}

	if err := s.repo.Insert(ctx, list); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordListCreated()
	}
	slog.Info("リストを作成しました",
		slog.String("list_id", list.ID.Hex()),
		slog.String("owner_id", ownerID),
	)

	return list, nil
}

// Get は指定IDのリストを取得する。所有者チェックは行わない（読み取りは無制限）。
func (s *Service) Get(ctx context.Context, listID string) (*model.List, error) {
	list, err := s.repo.FindByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, model.NewListNotFoundError(listID)
	}
	return list, nil
}

// List はarchivedフィルタに一致するリストの一覧をupdatedAt降順で返す。
// archivedがnilの場合は全件を返す。空の結果はエラーではない。
func (s *Service) List(ctx context.Context, archived *bool) ([]*model.List, error) {
	return s.repo.List(ctx, archived)
}

// SetArchived はリストのアーカイブ状態を設定する。所有者のみ実行できる。
// 現在値と同じ値を設定しても成功し、updatedAtは更新される。
func (s *Service) SetArchived(ctx context.Context, listID, callerID string, archived bool) (bool, error) {
	if err := requireIdentity(callerID); err != nil {
		return false, err
	}

	list, err := s.repo.FindByID(ctx, listID)
	if err != nil {
		return false, err
	}
	if list == nil {
		return false, model.NewListNotFoundError(listID)
	}
	if err := requireOwner(list, callerID); err != nil {
		return false, err
	}

	matched, err := s.repo.SetArchived(ctx, listID, archived, s.now())
	if err != nil {
		return false, err
	}
	if !matched {
		// 読み込みと更新の間に削除された場合
		return false, model.NewListNotFoundError(listID)
	}
	return archived, nil
}

// Delete はリストを埋め込み項目・メンバーごと削除する。所有者のみ実行できる。
// 冪等ではなく、2回目の削除はリスト未検出になる。
func (s *Service) Delete(ctx context.Context, listID, callerID string) error {
	if err := requireIdentity(callerID); err != nil {
		return err
	}

	list, err := s.repo.FindByID(ctx, listID)
	if err != nil {
		return err
	}
	if list == nil {
		return model.NewListNotFoundError(listID)
	}
	if err := requireOwner(list, callerID); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, listID)
	if err != nil {
		return err
	}
	if !deleted {
		return model.NewListNotFoundError(listID)
	}

	if s.metrics != nil {
		s.metrics.RecordListDeleted()
	}
	slog.Info("リストを削除しました",
		slog.String("list_id", listID),
		slog.String("owner_id", callerID),
	)

	return nil
}

// AddItem は項目をリストへ追加する。所有者チェックは行わない。
// quantityが0以下の場合は1を設定する。
// リストの不在は追加更新の一致件数ゼロで検出する（事前読み込みはしない）。
func (s *Service) AddItem(ctx context.Context, listID, title string, quantity int) (*model.Item, error) {
	if strings.TrimSpace(title) == "" {
		return nil, model.NewValidationError("name")
	}
	if quantity <= 0 {
		quantity = 1
	}

	now := s.now()
	item := &model.Item{
		ID:          now.UnixMilli(),
		Title:       title,
		Quantity:    quantity,
		IsCompleted: false,
		CreatedAt:   now,
	}

	matched, err := s.repo.PushItem(ctx, listID, item, now)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, model.NewListNotFoundError(listID)
	}

	if s.metrics != nil {
		s.metrics.RecordItemMutation("add")
	}
	return item, nil
}

// ToggleItem は項目の完了状態を設定し、更新後の項目を返す。
// リストと項目の組が存在しない場合は項目未検出になる。
func (s *Service) ToggleItem(ctx context.Context, listID string, itemID int64, done bool) (*model.Item, error) {
	item, err := s.repo.SetItemCompleted(ctx, listID, itemID, done, s.now())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.NewItemNotFoundError(strconv.FormatInt(itemID, 10))
	}

	if s.metrics != nil {
		s.metrics.RecordItemMutation("toggle")
	}
	return item, nil
}

// DeleteItem は項目をリストから除去する。
// リストが存在しない場合のみエラーで、存在しない項目の除去は成功扱い。
func (s *Service) DeleteItem(ctx context.Context, listID string, itemID int64) error {
	matched, err := s.repo.PullItem(ctx, listID, itemID, s.now())
	if err != nil {
		return err
	}
	if !matched {
		return model.NewListNotFoundError(listID)
	}

	if s.metrics != nil {
		s.metrics.RecordItemMutation("delete")
	}
	return nil
}

// AddMember はメンバーをリストへ追加する。所有者チェックは行わない。
// userIDが空の場合は新規の識別子を生成する。ロールは常にmember。
func (s *Service) AddMember(ctx context.Context, listID, userID, name string) (*model.Member, error) {
	if strings.TrimSpace(name) == "" {
		return nil, model.NewValidationError("name")
	}
	if userID == "" {
		userID = uuid.NewString()
	}

	now := s.now()
	member := &model.Member{
		UserID:   userID,
		Name:     name,
		Role:     model.RoleMember,
		JoinedAt: now,
	}

	matched, err := s.repo.PushMember(ctx, listID, member, now)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, model.NewListNotFoundError(listID)
	}

	if s.metrics != nil {
		s.metrics.RecordMemberMutation("add")
	}
	return member, nil
}

// RemoveMember はメンバーをリストから除去する。
// リストが存在しない場合のみエラーで、存在しないメンバーの除去は成功扱い。
func (s *Service) RemoveMember(ctx context.Context, listID, userID string) error {
	matched, err := s.repo.PullMember(ctx, listID, userID, s.now())
	if err != nil {
		return err
	}
	if !matched {
		return model.NewListNotFoundError(listID)
	}

	if s.metrics != nil {
		s.metrics.RecordMemberMutation("remove")
	}
	return nil
}
