package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hitoshi/listman/internal/model"
)

// sampleLists は開発用のサンプルデータを生成する。
func sampleLists(now time.Time) []any {
	member := func(userID, name string, role model.Role) model.Member {
		return model.Member{UserID: userID, Name: name, Role: role, JoinedAt: now}
	}
	item := func(id int64, title string, quantity int, completed bool) model.Item {
		return model.Item{ID: id, Title: title, Quantity: quantity, IsCompleted: completed, CreatedAt: now}
	}

	base := now.UnixMilli()

	return []any{
		model.List{
			Name:      "Groceries",
			OwnerID:   "user-1",
			Archived:  false,
			CreatedAt: now,
			UpdatedAt: now,
			Members: []model.Member{
				member("user-1", "Alex", model.RoleOwner),
				member("user-2", "Jane", model.RoleMember),
			},
			Items: []model.Item{
				item(base+1, "Milk", 2, false),
				item(base+2, "Bread", 1, true),
				item(base+3, "Eggs", 12, false),
				item(base+4, "Apples", 6, false),
			},
		},
		model.List{
			Name:      "Hardware Store",
			OwnerID:   "user-2",
			Archived:  false,
			CreatedAt: now,
			UpdatedAt: now,
			Members: []model.Member{
				member("user-2", "Jane", model.RoleOwner),
				member("user-1", "Alex", model.RoleMember),
			},
			Items: []model.Item{
				item(base+10, "Screwdriver", 1, false),
				item(base+11, "Nails", 100, false),
				item(base+12, "Paint", 2, true),
			},
		},
		model.List{
			Name:      "Party Supplies",
			OwnerID:   "user-1",
			Archived:  true,
			CreatedAt: now.AddDate(0, 0, -7),
			UpdatedAt: now,
			Members: []model.Member{
				member("user-1", "Alex", model.RoleOwner),
			},
			Items: []model.Item{
				item(base+20, "Balloons", 20, true),
				item(base+21, "Cake", 1, true),
				item(base+22, "Candles", 10, true),
			},
		},
		model.List{
			Name:      "Office Supplies",
			OwnerID:   "user-1",
			Archived:  false,
			CreatedAt: now,
			UpdatedAt: now,
			Members: []model.Member{
				member("user-1", "Alex", model.RoleOwner),
				member("user-3", "Bob", model.RoleMember),
			},
			Items: []model.Item{
				item(base+30, "Pens", 12, false),
				item(base+31, "Paper", 500, false),
				item(base+32, "Stapler", 1, true),
			},
		},
	}
}

// Seed はlistsコレクションをサンプルデータで初期化する。
// 既存のリストは全て削除され、インデックスを再作成する。
func Seed(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("lists")

	// 既存データをクリア
	if _, err := col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear lists: %w", err)
	}

	docs := sampleLists(time.Now())
	res, err := col.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert sample lists: %w", err)
	}

	// 一覧・フィルタ・メンバー検索用のインデックス
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerId", Value: 1}}},
		{Keys: bson.D{{Key: "archived", Value: 1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
		{Keys: bson.D{{Key: "members.userId", Value: 1}}},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	slog.Info("database seeded",
		slog.Int("lists", len(res.InsertedIDs)),
	)

	return nil
}
