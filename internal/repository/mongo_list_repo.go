package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/hitoshi/listman/internal/model"
)

// listsCollection はリスト集約を格納するコレクション名。
const listsCollection = "lists"

// StoreMetrics はストア操作のレイテンシ記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type StoreMetrics interface {
	RecordStoreLatency(op string, duration time.Duration)
}

// MongoListRepo はListRepositoryのMongoDB実装。
// 全ての変更操作は単一ドキュメントを対象とし、
// MongoDBのドキュメント単位の原子性に依存する。
// 各ストア呼び出しにはこの層でタイムアウトを適用する。
type MongoListRepo struct {
	db      *mongo.Database
	timeout time.Duration
	metrics StoreMetrics
}

// NewMongoListRepo はMongoListRepoを生成する。
// timeoutが0の場合はタイムアウトを適用しない。metricsはnil可（記録をスキップする）。
func NewMongoListRepo(db *mongo.Database, timeout time.Duration, metrics StoreMetrics) *MongoListRepo {
	return &MongoListRepo{db: db, timeout: timeout, metrics: metrics}
}

func (r *MongoListRepo) col() *mongo.Collection {
	return r.db.Collection(listsCollection)
}

// opCtx はストア呼び出し用にタイムアウト付きコンテキストを生成する。
func (r *MongoListRepo) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// observe はストア操作のレイテンシを記録する。
func (r *MongoListRepo) observe(op string, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordStoreLatency(op, time.Since(start))
	}
}

// stamped はupdatedAtの更新を$set句へ合成する。
// 全ての変更操作はこのヘルパーを通じてupdatedAtを更新する。
func stamped(update bson.M, now time.Time) bson.M {
	set, ok := update["$set"].(bson.M)
	if !ok {
		set = bson.M{}
		update["$set"] = set
	}
	set["updatedAt"] = now
	return update
}

// FindByID は指定IDのリストを取得する。見つからない場合はnilを返す。
func (r *MongoListRepo) FindByID(ctx context.Context, id string) (*model.List, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer r.observe("find_one", time.Now())

	var list model.List
	err := r.col().FindOne(ctx, bson.M{"_id": resolveID(id)}).Decode(&list)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("リストの取得に失敗しました: %w", err)
	}
	return &list, nil
}

// List はフィルタに一致するリストの一覧をupdatedAt降順で返す。
func (r *MongoListRepo) List(ctx context.Context, archived *bool) ([]*model.List, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer r.observe("find_many", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.col().Find(ctx, archivedFilter(archived), opts)
	if err != nil {
		return nil, fmt.Errorf("リスト一覧の取得に失敗しました: %w", err)
	}
	defer cur.Close(ctx)

	lists := []*model.List{}
	if err := cur.All(ctx, &lists); err != nil {
		return nil, fmt.Errorf("リスト一覧のデコードに失敗しました: %w", err)
	}
	return lists, nil
}

// Insert は新規リストを永続化し、採番されたIDをlist.IDへ書き戻す。
func (r *MongoListRepo) Insert(ctx context.Context, list *model.List) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer r.observe("insert", time.Now())

	res, err := r.col().InsertOne(ctx, list)
	if err != nil {
		return fmt.Errorf("リストの作成に失敗しました: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		list.ID = oid
	}
	return nil
}

// SetArchived はarchivedフラグを更新する。リストが存在しない場合はfalseを返す。
func (r *MongoListRepo) SetArchived(ctx context.Context, id string, archived bool, now time.Time) (bool, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer r.observe("update_fields", time.Now())

	update := stamped(bson.M{"$set": bson.M{"archived": archived}}, now)
	res, err := r.col().UpdateOne(ctx, bson.M{"_id": resolveID(id)}, update)
	if err != nil {
		return false, fmt.Errorf("リストの更新に失敗しました: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// Delete はリストを削除する。リストが存在しない場合はfalseを返す。
func (r *MongoListRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer r.observe("delete", time.Now())

	res, err := r.col().DeleteOne(ctx, bson.M{"_id": resolveID(id)})
	if err != nil {
		return false, fmt.Errorf("リストの削除に失敗しました: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// PushItem は項目をitems配列へ追加する。リストが存在しない場合はfalseを返す。
func (r *MongoListRepo) PushItem(ctx context.Context, id string, item *model.Item, now time.Time) (bool, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer r.observe("push_item", time.Now())

	update := stamped(bson.M{"$push": bson.M{"items": item}}, now)
	res, err := r.col().UpdateOne(ctx, bson.M{"_id": resolveID(id)}, update)
	if err != nil {
		return false, fmt.Errorf("項目の追加に失敗しました: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// SetItemCompleted は一致した項目のisCompletedをポジショナル更新で設定し、
// 更新後の項目を返す。リストまたは項目が存在しない場合はnilを返す。
func (r *MongoListRepo) SetItemCompleted(ctx context.Context, id string, itemID int64, done bool, now time.Time) (*model.Item, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer r.observe("update_matched_item", time.Now())

	filter := bson.M{"_id": resolveID(id), "items.id": itemID}
	update := stamped(bson.M{"$set": bson.M{"items.$.isCompleted": done}}, now)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var list model.List
	err := r.col().FindOneAndUpdate(ctx, filter, update, opts).Decode(&list)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("項目の更新に失敗しました: %w", err)
	}

	for i := range list.Items {
		if list.Items[i].ID == itemID {
			return &list.Items[i], nil
		}
	}
	return nil, nil
}

// PullItem は指定idの項目をitems配列から除去する。
// リストが存在しない場合はfalseを返す。項目が存在しない場合は成功扱い。
func (r *MongoListRepo) PullItem(ctx context.Context, id string, itemID int64, now time.Time) (bool, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer r.observe("pull_item", time.Now())

	update := stamped(bson.M{"$pull": bson.M{"items": bson.M{"id": itemID}}}, now)
	res, err := r.col().UpdateOne(ctx, bson.M{"_id": resolveID(id)}, update)
	if err != nil {
		return false, fmt.Errorf("項目の削除に失敗しました: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// PushMember はメンバーをmembers配列へ追加する。リストが存在しない場合はfalseを返す。
func (r *MongoListRepo) PushMember(ctx context.Context, id string, member *model.Member, now time.Time) (bool, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer r.observe("push_member", time.Now())

	update := stamped(bson.M{"$push": bson.M{"members": member}}, now)
	res, err := r.col().UpdateOne(ctx, bson.M{"_id": resolveID(id)}, update)
	if err != nil {
		return false, fmt.Errorf("メンバーの追加に失敗しました: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// PullMember は指定userIdのメンバーをmembers配列から除去する。
// リストが存在しない場合はfalseを返す。メンバーが存在しない場合は成功扱い。
func (r *MongoListRepo) PullMember(ctx context.Context, id string, userID string, now time.Time) (bool, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer r.observe("pull_member", time.Now())

	update := stamped(bson.M{"$pull": bson.M{"members": bson.M{"userId": userID}}}, now)
	res, err := r.col().UpdateOne(ctx, bson.M{"_id": resolveID(id)}, update)
	if err != nil {
		return false, fmt.Errorf("メンバーの削除に失敗しました: %w", err)
	}
	return res.MatchedCount > 0, nil
}
