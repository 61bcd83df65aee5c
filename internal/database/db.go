// Package database はMongoDBへの接続管理を提供する。
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Open はMongoDBクライアントを生成し、疎通を確認して返す。
// mongoURIはMongoDBの接続URIを指定する（例: "mongodb://localhost:27017"）。
func Open(ctx context.Context, mongoURI string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		// Pingに失敗したクライアントは切断してから返す
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// Pinger はヘルスチェック用にmongo.ClientのPingをラップする。
type Pinger struct {
	client *mongo.Client
}

// NewPinger はPingerを生成する。
func NewPinger(client *mongo.Client) *Pinger {
	return &Pinger{client: client}
}

// Ping はMongoDBへの疎通を確認する。
func (p *Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}
