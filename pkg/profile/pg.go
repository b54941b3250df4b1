package profile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flaglab/flagkit/pkg/config"
)

// PGConfig configures the Postgres-backed store. Fields are populated from
// environment variables via github.com/caarlos0/env.
type PGConfig struct {
	ConnectionString string        `env:"PROFILE_PG_CONN_URL,required"`
	Table            string        `env:"PROFILE_PG_TABLE" envDefault:"user_profiles"`
	MaxOpenConns     int32         `env:"PROFILE_PG_MAX_OPEN_CONNS" envDefault:"10"`
	RetryAttempts    int           `env:"PROFILE_PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval    time.Duration `env:"PROFILE_PG_RETRY_INTERVAL" envDefault:"5s"`
}

// ErrPGNotReady indicates the database did not accept a connection within
// the configured retry budget.
var ErrPGNotReady = errors.New("postgres did not become ready within the given time period")

// ConnectPG establishes a pgx pool for the profile store, retrying with a
// linear backoff so simultaneous service restarts do not hammer the database.
func ConnectPG(ctx context.Context, cfg PGConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrPGNotReady, err)
	}
	poolConfig.MaxConns = cfg.MaxOpenConns

	for i := 0; i < cfg.RetryAttempts; i++ {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrPGNotReady, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, ErrPGNotReady
}

// PGStore persists profiles in a three-column table
// (user_id, experiment_id, variation_id) with a composite primary key on
// (user_id, experiment_id). The host owns schema management:
//
//	CREATE TABLE user_profiles (
//	    user_id       TEXT NOT NULL,
//	    experiment_id TEXT NOT NULL,
//	    variation_id  TEXT NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (user_id, experiment_id)
//	);
type PGStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPGStore wraps an existing pgx pool.
func NewPGStore(pool *pgxpool.Pool, cfg PGConfig) *PGStore {
	table := cfg.Table
	if table == "" {
		table = "user_profiles"
	}
	return &PGStore{pool: pool, table: table}
}

// NewPGStoreFromEnv loads PGConfig from the environment (PROFILE_PG_*
// variables), connects, and returns the store.
func NewPGStoreFromEnv(ctx context.Context) (*PGStore, error) {
	var cfg PGConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	pool, err := ConnectPG(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewPGStore(pool, cfg), nil
}

// Lookup reads all stored decisions for a user.
func (s *PGStore) Lookup(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrEmptyUserID
	}

	rows, err := s.pool.Query(ctx,
		`SELECT experiment_id, variation_id FROM `+s.table+` WHERE user_id = $1`, userID)
	if err != nil {
		return Profile{}, errors.Join(ErrLookupFailed, err)
	}
	defer rows.Close()

	p := NewProfile(userID)
	for rows.Next() {
		var experimentID, variationID string
		if err := rows.Scan(&experimentID, &variationID); err != nil {
			return Profile{}, errors.Join(ErrLookupFailed, err)
		}
		p.Decisions[experimentID] = variationID
	}
	if err := rows.Err(); err != nil {
		return Profile{}, errors.Join(ErrLookupFailed, err)
	}
	return p, nil
}

// Save upserts the profile's decisions in one batch.
func (s *PGStore) Save(ctx context.Context, p Profile) error {
	if p.UserID == "" {
		return ErrEmptyUserID
	}
	if len(p.Decisions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for experimentID, variationID := range p.Decisions {
		batch.Queue(
			`INSERT INTO `+s.table+` (user_id, experiment_id, variation_id, updated_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (user_id, experiment_id)
			 DO UPDATE SET variation_id = EXCLUDED.variation_id, updated_at = now()`,
			p.UserID, experimentID, variationID)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}
