package postgres

import (
	"context"
	"fmt"
	"time"

	"aura-vcf-bot/internal/infra/metrics"

	"github.com/jackc/pgx/v4/pgxpool"
)

// NewPgxPool parses dsn, caps the pool at maxConns and pings once before
// returning.
func NewPgxPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(cctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(cctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// PoolStatsJob publishes pool gauges; it is meant to run on a scheduler.
type PoolStatsJob struct {
	pool *pgxpool.Pool
}

func NewPoolStatsJob(pool *pgxpool.Pool) *PoolStatsJob { return &PoolStatsJob{pool: pool} }

func (j *PoolStatsJob) Name() string { return "db_pool_stats" }

func (j *PoolStatsJob) Run(ctx context.Context) error {
	st := j.pool.Stat()
	metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
	return nil
}
