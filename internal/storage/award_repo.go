package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type AwardRepo struct {
	db *sql.DB
}

func NewAwardRepo(db *sql.DB) *AwardRepo {
	return &AwardRepo{db: db}
}

func (r *AwardRepo) AppendAwards(ctx context.Context, awards []Award) error {
	if len(awards) == 0 {
		return nil
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, a := range awards {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO xp_events (user_key, day, source, amount, total, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, a.User, a.Day, a.Source, a.Amount, a.Total, a.CreatedAt.UTC()); err != nil {
				return fmt.Errorf("award insert: %w", err)
			}
		}
		return nil
	})
}

func (r *AwardRepo) ListAwards(ctx context.Context, user string, limit int) ([]Award, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_key, day, source, amount, total, created_at
		FROM xp_events
		WHERE user_key = ?
		ORDER BY id DESC
		LIMIT ?
	`, user, limit)
	if err != nil {
		return nil, fmt.Errorf("award list: %w", err)
	}
	defer rows.Close()

	var out []Award
	for rows.Next() {
		var a Award
		if err := rows.Scan(&a.ID, &a.User, &a.Day, &a.Source, &a.Amount, &a.Total, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("award scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("award rows: %w", err)
	}
	return out, nil
}
