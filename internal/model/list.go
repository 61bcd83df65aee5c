// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// List は共有買い物リストの集約ルートを表す。
// メンバーと項目のシーケンスはリスト本体に埋め込まれ、
// リストと同一ドキュメントとして原子的に更新される。
type List struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string        `bson:"name" json:"name"`
	OwnerID   string        `bson:"ownerId" json:"ownerId"`
	Archived  bool          `bson:"archived" json:"archived"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
	Members   []Member      `bson:"members" json:"members"`
	Items     []Item        `bson:"items" json:"items"`
}

// Member はリストの参加メンバーを表す。
// userIdはリスト内で一意。並び順は参加順。
type Member struct {
	UserID   string    `bson:"userId" json:"userId"`
	Name     string    `bson:"name" json:"name"`
	Role     Role      `bson:"role" json:"role"`
	JoinedAt time.Time `bson:"joinedAt" json:"joinedAt"`
}

// Role はメンバーのロールを表す。
type Role string

const (
	// RoleOwner はリストの所有者ロール。
	RoleOwner Role = "owner"
	// RoleMember は一般メンバーロール。
	RoleMember Role = "member"
)

// Item は買い物リストの項目を表す。
// idは作成時刻由来の整数でリスト内で一意。並び順は追加順。
type Item struct {
	ID          int64     `bson:"id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Quantity    int       `bson:"quantity" json:"quantity"`
	IsCompleted bool      `bson:"isCompleted" json:"isCompleted"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
