// Package store persists per-user configuration in two areas: a synchronised
// one for secrets and a local one for display preferences. Writes are
// last-write-wins and nothing is validated beyond presence.
package store

import "context"

const (
	AreaSync  = "sync"
	AreaLocal = "local"

	KeyGeminiAPIKey     = "geminiApiKey"
	KeyCustomBackground = "customBackground"
)

type Area interface {
	Get(ctx context.Context, userID int64, key string) (string, bool, error)
	Set(ctx context.Context, userID int64, key string, value string) error
	Remove(ctx context.Context, userID int64, key string) error
}
