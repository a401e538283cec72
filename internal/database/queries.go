package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

func (d *Database) GetValue(
	ctx context.Context,
	area string,
	userID int64,
	key string,
) (string, bool, error) {
	query := "select value from storage where area = ? and user_id = ? and key = ?"

	var value string

	err := d.db.QueryRowContext(ctx, query, area, userID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to scan row: %w", err)
	}

	return value, true, nil
}

func (d *Database) SetValue(
	ctx context.Context,
	area string,
	userID int64,
	key string,
	value string,
) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("storage key is empty")
	}

	query := `insert into storage (area, user_id, key, value)
	values (?, ?, ?, ?)
	on conflict (area, user_id, key) do update
	set value = excluded.value, updated_at = current_timestamp`

	_, err := d.db.ExecContext(ctx, query, area, userID, key, value)

	return err
}

func (d *Database) RemoveValue(ctx context.Context, area string, userID int64, key string) error {
	query := "delete from storage where area = ? and user_id = ? and key = ?"

	_, err := d.db.ExecContext(ctx, query, area, userID, key)

	return err
}

func (d *Database) CountUsers(ctx context.Context, area string, key string) (int64, error) {
	query := "select count(distinct user_id) from storage where area = ? and key = ?"

	var count int64
	if err := d.db.QueryRowContext(ctx, query, area, key).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to scan row: %w", err)
	}

	return count, nil
}
