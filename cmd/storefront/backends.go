package main

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

type publisherCloser interface {
	service.OrderPublisher
	Close() error
}

type backends struct {
	catalog   catalog.Editor
	carts     repository.CartRepository
	cache     cache.CartCache
	orders    orders.Store
	publisher publisherCloser
	closers   []func() error
	log       *zap.Logger
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			b.log.Warn("close backend error", zap.Error(err))
		}
	}
}

func openCatalog(cfg *config.Config, log *zap.Logger) (catalog.Editor, func() error, error) {
	if cfg.CatalogBackend != config.BackendSQLite {
		log.Info("using in-memory demo catalog")
		return catalog.NewDemoCatalog(), func() error { return nil }, nil
	}

	repo, err := catalog.NewRepository(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		repo.Close()
		return nil, nil, err
	}
	log.Info("connected to SQLite catalog", zap.String("path", cfg.DBPath))
	return repo, repo.Close, nil
}

func openBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{log: log}

	cat, closeCatalog, err := openCatalog(cfg, log)
	if err != nil {
		return nil, err
	}
	b.catalog = cat
	b.closers = append(b.closers, closeCatalog)

	switch cfg.CartBackend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
		defer cancel()

		db, err := repository.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() error { return db.Client().Disconnect(context.Background()) })

		b.carts = repository.NewMongoRepository(db)
		if err := repository.EnsureIndexes(connectCtx, b.carts); err != nil {
			b.Close()
			return nil, fmt.Errorf("create cart indexes: %w", err)
		}
		log.Info("connected to MongoDB", zap.String("db", cfg.MongoDB))
	default:
		b.carts = repository.NewMemoryRepository()
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		b.closers = append(b.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		b.cache = cache.NewRedisCache(client, cfg.CartCacheTTL)
		b.orders = orders.NewRedisStore(client, cfg.OrderTTL)
		log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
	} else {
		b.cache = cache.NopCache{}
		b.orders = orders.NewMemoryStore(cfg.OrderTTL)
	}

	if len(cfg.KafkaBrokers) > 0 {
		b.publisher = publisher.NewKafkaPublisher(cfg.KafkaTopic, log, cfg.KafkaBrokers...)
		log.Info("publishing orders to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	} else {
		b.publisher = publisher.NopPublisher{}
	}
	b.closers = append(b.closers, b.publisher.Close)

	return b, nil
}

func migrateCatalog(_ *cli.Context, cfg *config.Config, log *zap.Logger) error {
	repo, err := catalog.NewRepository(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		return err
	}
	log.Info("catalog migrations applied", zap.String("path", cfg.DBPath))
	return nil
}

func seedCatalog(c *cli.Context, cfg *config.Config, log *zap.Logger) error {
	cat, closeCatalog, err := openCatalog(cfg, log)
	if err != nil {
		return err
	}
	defer closeCatalog()

	seeded, err := catalog.Seed(c.Context, cat)
	if err != nil {
		return err
	}
	if seeded {
		log.Info("inserted sample products")
	} else {
		log.Info("products already exist")
	}
	return nil
}
