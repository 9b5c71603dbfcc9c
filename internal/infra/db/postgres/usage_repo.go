package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"aura-vcf-bot/internal/domain"
	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/domain/ports/repository"
	"aura-vcf-bot/internal/infra/metrics"
)

var _ repository.UsageRepository = (*UsageRepo)(nil)

// UsageRepo stores one metadata row per completed operation plus a daily
// rollup that outlives the raw rows.
type UsageRepo struct {
	pool *pgxpool.Pool
	txm  repository.TransactionManager
}

func NewUsageRepo(pool *pgxpool.Pool, txm repository.TransactionManager) *UsageRepo {
	return &UsageRepo{pool: pool, txm: txm}
}

func (r *UsageRepo) Record(ctx context.Context, rec *model.UsageRecord) error {
	if rec == nil || !rec.Operation.Valid() {
		return domain.ErrInvalidArgument
	}
	const insert = `
INSERT INTO usage_records (id, chat_id, operation, files, contacts, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	const rollup = `
INSERT INTO usage_daily (day, operation, runs, files, contacts)
VALUES ($1::date, $2, 1, $3, $4)
ON CONFLICT (day, operation) DO UPDATE SET
  runs = usage_daily.runs + 1,
  files = usage_daily.files + EXCLUDED.files,
  contacts = usage_daily.contacts + EXCLUDED.contacts;`

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return r.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ex, err := getExecutor(r.pool, tx)
		if err != nil {
			return err
		}
		if _, err := ex.Exec(ctx, insert, rec.ID, rec.ChatID, string(rec.Operation), rec.Files, rec.Contacts, created); err != nil {
			return fmt.Errorf("insert usage record: %w", err)
		}
		if _, err := ex.Exec(ctx, rollup, created.UTC(), string(rec.Operation), rec.Files, rec.Contacts); err != nil {
			return fmt.Errorf("update usage rollup: %w", err)
		}
		return nil
	})
}

func (r *UsageRepo) Summary(ctx context.Context, since time.Time) (*model.UsageSummary, error) {
	ex, err := getExecutor(r.pool, repository.NoTX)
	if err != nil {
		return nil, err
	}
	sum := &model.UsageSummary{Since: since, Operations: make(map[model.Operation]int)}

	var users int64
	if err := ex.QueryRow(ctx,
		`SELECT COUNT(DISTINCT chat_id) FROM usage_records WHERE created_at >= $1;`, since,
	).Scan(&users); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	sum.Users = int(users)

	rows, err := ex.Query(ctx, `
SELECT operation, COUNT(*), COALESCE(SUM(files),0), COALESCE(SUM(contacts),0)
  FROM usage_records
 WHERE created_at >= $1
 GROUP BY operation;`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			op                    string
			runs, files, contacts int64
		)
		if err := rows.Scan(&op, &runs, &files, &contacts); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		sum.Operations[model.Operation(op)] = int(runs)
		sum.FilesOut += int(files)
		sum.ContactsOut += int(contacts)
	}
	return sum, rows.Err()
}

// Prune drops raw rows created before cutoff; the daily rollup is kept.
func (r *UsageRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ex, err := getExecutor(r.pool, repository.NoTX)
	if err != nil {
		return 0, err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM usage_records WHERE created_at < $1;`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PruneJob runs Prune with a rolling cutoff on a scheduler.
type PruneJob struct {
	repo      *UsageRepo
	retention time.Duration
	now       func() time.Time
}

func NewPruneJob(repo *UsageRepo, retention time.Duration) *PruneJob {
	return &PruneJob{repo: repo, retention: retention, now: time.Now}
}

func (j *PruneJob) Name() string { return "usage_prune" }

func (j *PruneJob) Run(ctx context.Context) error {
	n, err := j.repo.Prune(ctx, j.now().Add(-j.retention))
	if err != nil {
		return err
	}
	metrics.AddUsagePruned(n)
	return nil
}
