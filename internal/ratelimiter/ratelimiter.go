package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
	queueSize       = 1000
)

// SendFunc performs one outbound call to the chat.
type SendFunc func(ctx context.Context) error

type request struct {
	ctx      context.Context
	chatID   int64
	send     SendFunc
	response chan error
}

// RateLimiter serialises outbound calls and keeps a per-chat pause between
// them so Telegram flood limits are never hit.
type RateLimiter struct {
	queue       chan request
	lastSent    map[int64]time.Time
	privateRate time.Duration
	groupRate   time.Duration
	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	log         *slog.Logger
}

type Option func(*RateLimiter)

// WithRates overrides the minimal pause between sends to one chat.
func WithRates(privateRate time.Duration, groupRate time.Duration) Option {
	return func(rl *RateLimiter) {
		rl.privateRate = privateRate
		rl.groupRate = groupRate
	}
}

func New(log *slog.Logger, opts ...Option) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		queue:       make(chan request, queueSize),
		lastSent:    make(map[int64]time.Time),
		privateRate: privateChatRate,
		groupRate:   groupChatRate,
		ctx:         ctx,
		cancel:      cancel,
		log:         log,
	}

	for _, opt := range opts {
		opt(rl)
	}

	go rl.processQueue()

	return rl
}

// Do queues send for chatID and waits for its result.
func (rl *RateLimiter) Do(ctx context.Context, chatID int64, send SendFunc) error {
	if err := rl.ctx.Err(); err != nil {
		return err
	}

	req := request{
		ctx:      ctx,
		chatID:   chatID,
		send:     send,
		response: make(chan error, 1),
	}

	select {
	case rl.queue <- req:
	case <-rl.ctx.Done():
		return rl.ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.response:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rl *RateLimiter) Stop() {
	rl.cancel()
}

func (rl *RateLimiter) processQueue() {
	for {
		select {
		case req := <-rl.queue:
			rl.handleRequest(req)
		case <-rl.ctx.Done():
			for {
				select {
				case req := <-rl.queue:
					req.response <- rl.ctx.Err()
				default:
					return
				}
			}
		}
	}
}

func (rl *RateLimiter) handleRequest(req request) {
	if err := rl.ctx.Err(); err != nil {
		req.response <- err

		return
	}

	if err := req.ctx.Err(); err != nil {
		req.response <- err

		return
	}

	rl.mu.Lock()
	lastSent, exists := rl.lastSent[req.chatID]
	rl.mu.Unlock()

	if exists {
		delay := getDelay(rl.getRate(req.chatID), lastSent)

		if delay > 0 {
			rl.log.DebugContext(req.ctx, "Rate limiting message",
				"chatID", req.chatID,
				"delay", delay,
				"queueLen", len(rl.queue))

			select {
			case <-time.After(delay):
			case <-rl.ctx.Done():
				req.response <- rl.ctx.Err()

				return
			case <-req.ctx.Done():
				req.response <- req.ctx.Err()

				return
			}
		}
	}

	err := req.send(req.ctx)

	rl.mu.Lock()
	rl.lastSent[req.chatID] = time.Now()
	rl.mu.Unlock()

	req.response <- err
}

func getDelay(
	rate time.Duration,
	lastSent time.Time,
) time.Duration {
	elapsed := time.Since(lastSent)

	return max(rate-elapsed, 0)
}

// getRate treats negative chat IDs as groups.
func (rl *RateLimiter) getRate(chatID int64) time.Duration {
	if chatID < 0 {
		return rl.groupRate
	}

	return rl.privateRate
}
