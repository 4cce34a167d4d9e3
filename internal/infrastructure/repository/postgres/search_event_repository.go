package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
)

type SearchEventRepository struct {
	db *sql.DB
}

func NewSearchEventRepository(db *sql.DB) *SearchEventRepository {
	return &SearchEventRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *SearchEventRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS search_events (
	request_id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	processed_query TEXT NOT NULL,
	language_detected TEXT NOT NULL,
	result_count INTEGER NOT NULL,
	top_confidence DOUBLE PRECISION NOT NULL,
	duration_ms BIGINT NOT NULL,
	performed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_events_performed_at ON search_events(performed_at DESC);
CREATE INDEX IF NOT EXISTS idx_search_events_query ON search_events(processed_query);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Record upserts on request_id so a redelivered event is idempotent.
func (r *SearchEventRepository) Record(ctx context.Context, event domain.SearchEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO search_events (
	request_id, query, processed_query, language_detected, result_count, top_confidence, duration_ms, performed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (request_id) DO NOTHING
`,
		event.RequestID, event.Query, event.ProcessedQuery, event.LanguageDetected,
		event.ResultCount, event.TopConfidence, event.DurationMillis, event.PerformedAt,
	)
	if err != nil {
		return fmt.Errorf("insert search event: %w", err)
	}
	return nil
}

func (r *SearchEventRepository) TopQueries(ctx context.Context, since time.Time, limit int) ([]domain.QueryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT processed_query, COUNT(*) AS searches
FROM search_events
WHERE performed_at >= $1
GROUP BY processed_query
ORDER BY searches DESC, processed_query ASC
LIMIT $2
`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query top searches: %w", err)
	}
	defer rows.Close()

	var counts []domain.QueryCount
	for rows.Next() {
		var qc domain.QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, fmt.Errorf("scan top search row: %w", err)
		}
		counts = append(counts, qc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top searches: %w", err)
	}
	return counts, nil
}
