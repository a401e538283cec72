package speech

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// MaxUtterance bounds synthesis plus delivery of one utterance.
const MaxUtterance = 2 * time.Minute

type State int

const (
	StateIdle State = iota
	StateSpeaking
)

func (s State) String() string {
	if s == StateSpeaking {
		return "speaking"
	}

	return "idle"
}

// Deliver hands finished audio to the chat.
type Deliver func(ctx context.Context, audio []byte) error

// IdleFunc is told when an utterance ends without being stopped.
type IdleFunc func(ctx context.Context, chatID int64)

type utterance struct {
	id     uint64
	cancel context.CancelFunc
}

// Controller keeps at most one utterance per chat. A chat is speaking from
// the moment synthesis starts until the audio is delivered, fails or is
// stopped.
type Controller struct {
	synth  Synthesizer
	onIdle IdleFunc
	log    *slog.Logger

	mu     sync.Mutex
	active map[int64]utterance
	nextID uint64
	wg     sync.WaitGroup
}

func NewController(synth Synthesizer, log *slog.Logger) *Controller {
	return &Controller{
		synth:  synth,
		log:    log,
		active: make(map[int64]utterance),
	}
}

// OnIdle registers fn to run after an utterance finishes on its own.
func (c *Controller) OnIdle(fn IdleFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onIdle = fn
}

// Toggle stops an ongoing utterance or starts a new one for text.
func (c *Controller) Toggle(
	ctx context.Context,
	chatID int64,
	apiKey string,
	text string,
	deliver Deliver,
) State {
	if c.Stop(chatID) {
		return StateIdle
	}

	if strings.TrimSpace(text) == "" {
		return StateIdle
	}

	// The utterance outlives the request that started it.
	speakCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), MaxUtterance)

	c.mu.Lock()
	c.nextID++
	u := utterance{id: c.nextID, cancel: cancel}
	c.active[chatID] = u
	c.mu.Unlock()

	c.wg.Go(func() {
		c.speak(speakCtx, chatID, apiKey, text, deliver)

		if !c.finish(chatID, u) {
			return
		}

		c.mu.Lock()
		onIdle := c.onIdle
		c.mu.Unlock()

		if onIdle != nil {
			onIdle(context.WithoutCancel(speakCtx), chatID)
		}
	})

	return StateSpeaking
}

func (c *Controller) speak(ctx context.Context, chatID int64, apiKey string, text string, deliver Deliver) {
	audio, err := c.synth.Synthesize(ctx, apiKey, text)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.log.ErrorContext(ctx, "Failed to synthesize speech",
				"error", err,
				"chatID", chatID)
		}

		return
	}

	if ctx.Err() != nil {
		return
	}

	if err = deliver(ctx, audio); err != nil {
		c.log.ErrorContext(ctx, "Failed to deliver speech",
			"error", err,
			"chatID", chatID)
	}
}

// Stop cancels the chat's utterance and reports whether one was running.
func (c *Controller) Stop(chatID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.active[chatID]
	if !ok {
		return false
	}

	u.cancel()
	delete(c.active, chatID)

	return true
}

func (c *Controller) State(chatID int64) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.active[chatID]; ok {
		return StateSpeaking
	}

	return StateIdle
}

// StopAll cancels every utterance and waits for them to finish.
func (c *Controller) StopAll() {
	c.mu.Lock()
	for chatID, u := range c.active {
		u.cancel()
		delete(c.active, chatID)
	}
	c.mu.Unlock()

	c.Wait()
}

// Wait blocks until every started utterance has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// finish reports whether u was still the chat's active utterance.
func (c *Controller) finish(chatID int64, u utterance) bool {
	u.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.active[chatID]
	if !ok || cur.id != u.id {
		return false
	}

	delete(c.active, chatID)

	return true
}
