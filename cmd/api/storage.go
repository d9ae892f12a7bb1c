package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	blogrepo "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/repo"
	commentrepo "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/comment/repo"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/docstore"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/memstore"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	userrepo "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/database"
)

// openStore connects the backend named by cfg.Driver and prepares its
// schema.
func openStore(ctx context.Context, cfg database.Config, logger *zap.SugaredLogger) (*store.Store, error) {
	switch cfg.Driver {
	case database.DriverMongo:
		client, err := database.ConnectMongo(cfg)
		if err != nil {
			return nil, err
		}
		if err := docstore.EnsureIndexes(ctx, client, cfg.MongoDatabase); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Infow("storage ready", "driver", cfg.Driver, "database", cfg.MongoDatabase)
		return docstore.New(client, cfg.MongoDatabase), nil

	case database.DriverPostgres:
		sqlDB, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		db := sqlx.NewDb(sqlDB, "postgres")
		users := userrepo.NewUserRepo(db)
		blogs := blogrepo.NewBlogRepo(db)
		comments := commentrepo.NewCommentRepo(db)
		for _, t := range []interface {
			EnsureTable(context.Context) error
		}{users, blogs, comments} {
			if err := t.EnsureTable(ctx); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("ensure table: %w", err)
			}
		}
		logger.Infow("storage ready", "driver", cfg.Driver)
		return store.New(blogs, users, comments, func(context.Context) error { return db.Close() }), nil

	case database.DriverMemory:
		logger.Warnw("using in-memory storage; data is lost on exit")
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
