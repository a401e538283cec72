package bot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"briefly/internal/ratelimiter"
	"briefly/internal/session"
	"briefly/internal/speech"
	"briefly/internal/store"
	"briefly/internal/summarizer"
	"briefly/internal/theme"
)

const updateProcessingTimeout = 60 * time.Second

// telegramAPI is the part of the Bot API the popup uses.
type telegramAPI interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *tgbot.DeleteMessageParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
	SendDocument(ctx context.Context, params *tgbot.SendDocumentParams) (*models.Message, error)
	SendAudio(ctx context.Context, params *tgbot.SendAudioParams) (*models.Message, error)
}

type SummaryPipeline interface {
	Summarize(ctx context.Context, req summarizer.Request) (string, error)
}

// Services are the collaborators behind the popup actions.
type Services struct {
	Pipeline SummaryPipeline
	Sessions *session.Store
	// Keys is the synchronised area holding the user's API key.
	Keys        store.Area
	FallbackKey string
	Speech      *speech.Controller
	Themes      *theme.Controller
}

type Bot struct {
	tg           *tgbot.Bot
	api          telegramAPI
	rateLimiter  *ratelimiter.RateLimiter
	pipeline     SummaryPipeline
	sessions     *session.Store
	keys         store.Area
	fallbackKey  string
	speech       *speech.Controller
	themes       *theme.Controller
	actions      map[string]action
	allowedUsers []int64
	now          func() time.Time
	log          *slog.Logger
}

func New(
	token string,
	services Services,
	allowedUsers []int64,
	log *slog.Logger,
) (*Bot, error) {
	b := newBot(nil, ratelimiter.New(log), services, allowedUsers, log)

	tg, err := tgbot.New(
		strings.TrimSpace(token),
		tgbot.WithDefaultHandler(func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
			b.handleUpdate(ctx, update)
		}),
		tgbot.WithErrorsHandler(func(err error) {
			log.Error("Telegram polling failed",
				"error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b.tg = tg
	b.api = tg

	return b, nil
}

func newBot(
	api telegramAPI,
	rateLimiter *ratelimiter.RateLimiter,
	services Services,
	allowedUsers []int64,
	log *slog.Logger,
) *Bot {
	b := &Bot{
		api:          api,
		rateLimiter:  rateLimiter,
		pipeline:     services.Pipeline,
		sessions:     services.Sessions,
		keys:         services.Keys,
		fallbackKey:  strings.TrimSpace(services.FallbackKey),
		speech:       services.Speech,
		themes:       services.Themes,
		allowedUsers: allowedUsers,
		now:          time.Now,
		log:          log,
	}

	b.actions = b.actionTable()
	b.speech.OnIdle(b.refreshPopup)

	return b
}

// Start polls updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.tg.Start(ctx)

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) Stop() {
	if b.speech != nil {
		b.speech.StopAll()
	}

	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *models.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil:
		message := update.Message
		if message.From == nil {
			return
		}

		userID := message.From.ID
		if !b.userAllowed(userID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", userID,
				"chatID", message.Chat.ID,
				"username", message.From.Username,
				"chatType", message.Chat.Type)

			return
		}

		if err := b.handleMessage(updateCtx, message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", message.Chat.ID,
				"userID", userID,
				"chatType", message.Chat.Type,
				"messageID", message.ID)
		}

	case update.CallbackQuery != nil:
		callback := update.CallbackQuery
		chatID, messageID := callbackMessage(callback)

		if !b.userAllowed(callback.From.ID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", callback.From.ID,
				"chatID", chatID,
				"username", callback.From.Username,
				"data", callback.Data)

			return
		}

		if err := b.handleCallbackQuery(updateCtx, callback); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", chatID,
				"userID", callback.From.ID,
				"data", callback.Data,
				"messageID", messageID)
		}
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func callbackMessage(callback *models.CallbackQuery) (int64, int) {
	if callback == nil || callback.Message.Message == nil {
		return 0, 0
	}

	return callback.Message.Message.Chat.ID, callback.Message.Message.ID
}
