package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/database"
)

// DBTX is the subset of pgxpool.Pool the repository uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	insertActivitySQL = `
		INSERT INTO intake_activity (id, owner, action, mode, product_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	listActivitySQL = `
		SELECT id, owner, action, mode, product_id, detail, created_at
		FROM intake_activity
		WHERE owner = $1
		ORDER BY created_at DESC
		LIMIT $2`
)

// ActivityRepository implements repository.ActivityRepository using PostgreSQL.
type ActivityRepository struct {
	db DBTX
}

// NewActivityRepository creates a new PostgreSQL-backed audit trail.
func NewActivityRepository(db DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append inserts one entry.
func (r *ActivityRepository) Append(ctx context.Context, a domain.Activity) (err error) {
	ctx, end := database.TraceQuery(ctx, "AppendActivity", insertActivitySQL)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, insertActivitySQL,
		a.ID,
		a.Owner,
		string(a.Action),
		string(a.Mode),
		a.ProductID,
		a.Detail,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's newest entries first.
func (r *ActivityRepository) ListByOwner(ctx context.Context, owner string, limit int) (_ []domain.Activity, err error) {
	ctx, end := database.TraceQuery(ctx, "ListActivity", listActivitySQL)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, listActivitySQL, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	out := []domain.Activity{}
	for rows.Next() {
		var (
			a            domain.Activity
			action, mode string
		)
		if err := rows.Scan(&a.ID, &a.Owner, &action, &mode, &a.ProductID, &a.Detail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		a.Action = domain.ActivityAction(action)
		a.Mode = domain.Mode(mode)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity rows: %w", err)
	}
	return out, nil
}
