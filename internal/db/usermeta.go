package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetUserMeta returns the first meta_value stored for userID under key.
func (db *DB) GetUserMeta(ctx context.Context, userID int64, key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT meta_value FROM `+db.table("usermeta")+`
		 WHERE user_id = ? AND meta_key = ? ORDER BY umeta_id LIMIT 1`,
		userID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get user meta %s: %w", key, err)
	}
	return value, true, nil
}

// UpdateUserMeta stores value for userID under key, inserting the row when missing.
func (db *DB) UpdateUserMeta(ctx context.Context, userID int64, key, value string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE `+db.table("usermeta")+` SET meta_value = ? WHERE user_id = ? AND meta_key = ?`,
		value, userID, key,
	)
	if err != nil {
		return fmt.Errorf("failed to update user meta %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO `+db.table("usermeta")+` (user_id, meta_key, meta_value) VALUES (?, ?, ?)`,
		userID, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user meta %s: %w", key, err)
	}
	return nil
}
