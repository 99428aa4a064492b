package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
)

// DB is a connected client bound to the configured database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewConnection connects and pings the deployment.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	client, err := mongo.Connect(ctx, clientOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb %v: %w", cfg.Hosts, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb %v: %w", cfg.Hosts, err)
	}
	return &DB{Client: client, Database: client.Database(cfg.Database)}, nil
}

func clientOptions(cfg config.DatabaseConfig) *options.ClientOptions {
	opts := options.Client().
		SetAppName("community-realtime").
		SetHosts(cfg.Hosts).
		SetDirect(cfg.Direct).
		SetMaxPoolSize(4).
		SetMaxConnIdleTime(time.Minute).
		SetTimeout(5 * time.Second)
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			AuthSource: cfg.AuthDB,
			Username:   cfg.Username,
			Password:   cfg.Password,
		})
	}
	return opts
}

func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}
