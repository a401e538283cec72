package store

import (
	"briefly/internal/database"
	"context"
	"fmt"
)

type SQLArea struct {
	db   *database.Database
	name string
}

func NewSQLArea(db *database.Database, name string) *SQLArea {
	return &SQLArea{db: db, name: name}
}

func (a *SQLArea) Get(ctx context.Context, userID int64, key string) (string, bool, error) {
	value, ok, err := a.db.GetValue(ctx, a.name, userID, key)
	if err != nil {
		return "", false, fmt.Errorf("get value: %w", err)
	}

	return value, ok, nil
}

func (a *SQLArea) Set(ctx context.Context, userID int64, key string, value string) error {
	if err := a.db.SetValue(ctx, a.name, userID, key, value); err != nil {
		return fmt.Errorf("set value: %w", err)
	}

	return nil
}

func (a *SQLArea) Remove(ctx context.Context, userID int64, key string) error {
	if err := a.db.RemoveValue(ctx, a.name, userID, key); err != nil {
		return fmt.Errorf("remove value: %w", err)
	}

	return nil
}
