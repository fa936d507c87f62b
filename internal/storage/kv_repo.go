package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// KVRepo is the SQLite-backed Store.
type KVRepo struct {
	db *sql.DB
}

func NewKVRepo(db *sql.DB) *KVRepo {
	return &KVRepo{db: db}
}

func (r *KVRepo) Get(ctx context.Context, user, key string) ([]byte, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE user_key = ? AND key = ?`, user, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return []byte(v), true, nil
}

func (r *KVRepo) Put(ctx context.Context, user string, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return upsertKV(ctx, tx, user, values)
	})
}

func (r *KVRepo) Delete(ctx context.Context, user string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys)+1)
	args = append(args, user)
	for _, k := range keys {
		args = append(args, k)
	}
	q := `DELETE FROM kv WHERE user_key = ? AND key IN (?` + strings.Repeat(",?", len(keys)-1) + `)`
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}

func (r *KVRepo) Snapshot(ctx context.Context, user string) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM kv WHERE user_key = ? ORDER BY key`, user)
	if err != nil {
		return nil, fmt.Errorf("kv snapshot: %w", err)
	}
	defer rows.Close()

	out := map[string][]byte{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("kv snapshot scan: %w", err)
		}
		out[k] = []byte(v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv snapshot rows: %w", err)
	}
	return out, nil
}

func (r *KVRepo) Replace(ctx context.Context, user string, values map[string][]byte, keep ...string) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		q := `DELETE FROM kv WHERE user_key = ?`
		args := []any{user}
		if len(keep) > 0 {
			q += ` AND key NOT IN (?` + strings.Repeat(",?", len(keep)-1) + `)`
			for _, k := range keep {
				args = append(args, k)
			}
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("kv replace clear: %w", err)
		}
		return upsertKV(ctx, tx, user, values)
	})
}
