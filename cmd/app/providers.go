package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/florelle/fleuriste/internal/domain/bouquet"
	"github.com/florelle/fleuriste/internal/domain/catalog"
	"github.com/florelle/fleuriste/internal/infra/bouquetrepo"
	"github.com/florelle/fleuriste/internal/infra/bouquetstore"
	"github.com/florelle/fleuriste/internal/infra/catalogrepo"
	"github.com/florelle/fleuriste/internal/infra/config"
	"github.com/florelle/fleuriste/internal/infra/llm/chatgpt"
)

func provideBouquetConfig(cfg *config.Config) bouquet.Config {
	tiers := make(map[bouquet.BudgetTier]bouquet.TierEnvelope, len(cfg.Recommender.Tiers))
	for name, tier := range cfg.Recommender.Tiers {
		parsed, ok := bouquet.ParseBudgetTier(name)
		if !ok {
			continue
		}
		tiers[parsed] = bouquet.TierEnvelope{
			MinFlowerTypes: tier.MinFlowerTypes,
			MaxFlowerTypes: tier.MaxFlowerTypes,
			MinPrice:       tier.MinPrice,
			MaxPrice:       tier.MaxPrice,
		}
	}
	if len(tiers) == 0 {
		tiers = bouquet.DefaultTiers()
	}
	return bouquet.Config{
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		AnalyzerPrompt:    cfg.Recommender.AnalyzerPrompt,
		ComposerPrompt:    cfg.Recommender.ComposerPrompt,
		MaxStemsPerFlower: cfg.Recommender.MaxStemsPerFlower,
		RequestTimeout:    cfg.LLM.RequestTimeout,
		Tiers:             tiers,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideTopOccasions(cfg *config.Config) int {
	return cfg.Trending.TopOccasions
}

func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Catalog.Postgres.DSN)
	if dsn == "" {
		logger.Info("catalog postgres dsn not set, using memory storage")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory storage", "error", err)
		return nil
	}
	if cfg.Catalog.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Catalog.Postgres.MaxConns
	}
	if cfg.Catalog.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Catalog.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory storage", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory storage", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres storage enabled")
	return pool
}

func provideCatalogRepository(pool *pgxpool.Pool, logger *slog.Logger) catalog.Repository {
	if pool == nil {
		logger.Info("catalog seeded in memory")
		return catalogrepo.NewMemoryRepository(catalogrepo.DefaultSeed())
	}
	return catalogrepo.NewPostgresRepository(pool)
}

func provideBouquetRepository(pool *pgxpool.Pool) bouquet.Repository {
	if pool == nil {
		return bouquetrepo.NewMemoryRepository()
	}
	return bouquetrepo.NewPostgresRepository(pool)
}

func provideTrendingStore(cfg *config.Config, logger *slog.Logger) bouquet.TrendingStore {
	if cfg.Trending.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return bouquetstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return bouquetstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey trending store enabled", "addr", cfg.Trending.Redis.Addr)
			return bouquetstore.NewValkeyStore(client, "bouquet")
		}
	}
	return bouquetstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Trending.Redis.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Trending.Redis.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Trending.Redis.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
