package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save inserts or updates the record of one finished analysis run
func (r *RunRepository) Save(ctx context.Context, run *domain.AnalysisRun) error {
	const q = `
INSERT INTO verification_run
  (id, session_id, overall_status, duration_ms, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  session_id=EXCLUDED.session_id,
  overall_status=EXCLUDED.overall_status,
  duration_ms=EXCLUDED.duration_ms,
  result_json=EXCLUDED.result_json;
`
	sessionID := stringOrDash(run.SessionID)
	status := stringOrDash(run.OverallStatus)
	result := run.ResultJSON
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, run.ID, sessionID, status, run.DurationMS, result, createdAt)
	return err
}

// Latest returns the most recent runs ordered by created_at desc
func (r *RunRepository) Latest(ctx context.Context, limit int) ([]*domain.AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `
SELECT id, session_id, overall_status, duration_ms, result_json, created_at
FROM verification_run
ORDER BY created_at DESC, id DESC
LIMIT $1;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AnalysisRun
	for rows.Next() {
		var run domain.AnalysisRun
		var created time.Time
		if err := rows.Scan(&run.ID, &run.SessionID, &run.OverallStatus, &run.DurationMS, &run.ResultJSON, &created); err != nil {
			return nil, err
		}
		run.CreatedAt = created
		out = append(out, &run)
	}
	return out, rows.Err()
}
