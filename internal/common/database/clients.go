// internal/common/database/clients.go
package database

import (
	"context"
	"fmt"

	"freelance-matcher/internal/common/config"
)

// Clients bundles the data-plane connections shared by workers and matchctl.
// ES is nil unless the elasticsearch vector backend is configured.
type Clients struct {
	Postgres *PostgresClient
	Redis    *RedisClient
	ES       *ElasticsearchClient
}

// Connect opens every client the configuration asks for and pings each one.
func Connect(ctx context.Context, cfg *config.Config) (*Clients, error) {
	c := &Clients{}

	pg, err := NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	c.Postgres = pg
	if err := pg.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}

	rdb, err := NewRedis(cfg.Database.Redis)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Redis = rdb
	if err := rdb.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if cfg.Vector.Backend == "elasticsearch" {
		es, err := NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			c.Close()
			return nil, err
		}
		if err := es.Ping(ctx); err != nil {
			c.Close()
			return nil, err
		}
		if err := es.VerifyKNN(ctx); err != nil {
			c.Close()
			return nil, err
		}
		c.ES = es
	}

	return c, nil
}

// HealthCheck pings every open client.
func (c *Clients) HealthCheck(ctx context.Context) error {
	if c.Postgres != nil {
		if err := c.Postgres.Ping(ctx); err != nil {
			return err
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx); err != nil {
			return err
		}
	}
	if c.ES != nil {
		if err := c.ES.Ping(ctx); err != nil {
			return fmt.Errorf("vector index: %w", err)
		}
	}
	return nil
}

// Close releases all connections. Safe on a partially built Clients.
func (c *Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
}
