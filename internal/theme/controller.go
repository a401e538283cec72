package theme

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"briefly/internal/store"
)

// State is the lifecycle of a chat's background: none → applied → saved.
type State int

const (
	StateNone State = iota
	StateApplied
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateApplied:
		return "applied"
	case StateSaved:
		return "saved"
	default:
		return "none"
	}
}

var (
	ErrUnknownBackground = errors.New("unknown background")
	ErrNothingApplied    = errors.New("no background is applied")
)

type current struct {
	css   string
	state State
}

// Controller owns the last applied background per chat and persists it to
// the local configuration area on save.
type Controller struct {
	mu    sync.Mutex
	chats map[int64]current
	local store.Area
}

func NewController(local store.Area) *Controller {
	return &Controller{
		chats: make(map[int64]current),
		local: local,
	}
}

func (c *Controller) Apply(chatID int64, name string) (Background, error) {
	bg, ok := Find(name)
	if !ok {
		return Background{}, fmt.Errorf("%w: %s", ErrUnknownBackground, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.chats[chatID] = current{css: bg.CSS, state: StateApplied}

	return bg, nil
}

// Save persists the applied background. Without one nothing is written.
func (c *Controller) Save(ctx context.Context, chatID int64, userID int64) error {
	c.mu.Lock()
	cur := c.chats[chatID]
	c.mu.Unlock()

	if cur.state == StateNone || cur.css == "" {
		return ErrNothingApplied
	}

	if err := c.local.Set(ctx, userID, store.KeyCustomBackground, cur.css); err != nil {
		return fmt.Errorf("set custom background: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if latest := c.chats[chatID]; latest.css == cur.css {
		latest.state = StateSaved
		c.chats[chatID] = latest
	}

	return nil
}

// Restore loads the saved background, if any, into the chat.
func (c *Controller) Restore(ctx context.Context, chatID int64, userID int64) (string, error) {
	css, ok, err := c.local.Get(ctx, userID, store.KeyCustomBackground)
	if err != nil {
		return "", fmt.Errorf("get custom background: %w", err)
	}

	css = strings.TrimSpace(css)
	if !ok || css == "" {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.chats[chatID] = current{css: css, state: StateSaved}

	return css, nil
}

func (c *Controller) Current(chatID int64) (string, State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.chats[chatID]

	return cur.css, cur.state
}
