package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"hermes/internal/adapters/config"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Bot wraps the Telegram Bot API with rate limiting and long polling
type Bot struct {
	api         *tgbotapi.BotAPI
	log         *logger.Logger
	rateLimiter *rate.Limiter

	mu         sync.RWMutex
	running    bool
	msgHandler func(tgbotapi.Update)
}

// NewBot creates a Telegram bot instance
func NewBot(cfg config.TelegramConfig) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "telegram bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}
	api.Debug = cfg.Debug

	log := logger.Get().With("component", "telegram_bot")
	log.Infof("authorized on account %s", api.Self.UserName)

	// Telegram allows 30 msg/sec; stay under it
	return &Bot{
		api:         api,
		log:         log,
		rateLimiter: rate.NewLimiter(rate.Limit(20), 30),
	}, nil
}

// SetMessageHandler registers the handler for incoming updates
func (b *Bot) SetMessageHandler(handler func(tgbotapi.Update)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgHandler = handler
}

// Start begins long polling for updates and blocks until the context ends
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.mu.Unlock()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.log.Infow("telegram bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.Stop()
			return nil
		case update := <-updates:
			b.mu.RLock()
			handler := b.msgHandler
			b.mu.RUnlock()
			if handler != nil {
				go handler(update)
			}
		}
	}
}

// Stop stops receiving updates
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return
	}
	b.api.StopReceivingUpdates()
	b.running = false
	b.log.Infow("telegram bot stopped")
}

// SendMessage sends a Markdown message to a chat
func (b *Bot) SendMessage(chatID int64, text string) error {
	return b.SendMessageWithContext(context.Background(), chatID, text)
}

// SendMessageWithContext sends a Markdown message, honoring the rate limiter
func (b *Bot) SendMessageWithContext(ctx context.Context, chatID int64, text string) error {
	if err := b.rateLimiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter wait failed")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	if _, err := b.api.Send(msg); err != nil {
		b.log.Errorw("failed to send message", "chat_id", chatID, "error", err)
		return errors.Wrap(err, "failed to send message")
	}
	return nil
}

// SendMessageWithKeyboard sends a Markdown message with an inline keyboard
func (b *Bot) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	if err := b.rateLimiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter wait failed")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard

	if _, err := b.api.Send(msg); err != nil {
		return errors.Wrap(err, "failed to send message with keyboard")
	}
	return nil
}

// AnswerCallbackQuery acknowledges an inline keyboard press
func (b *Bot) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	if err := b.rateLimiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter wait failed")
	}

	callback := tgbotapi.NewCallback(callbackQueryID, "")
	if _, err := b.api.Request(callback); err != nil {
		return errors.Wrap(err, "failed to answer callback query")
	}
	return nil
}

// SendTyping shows the typing indicator in a chat. Failures are only logged;
// the indicator is cosmetic.
func (b *Bot) SendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(action); err != nil {
		b.log.Debugw("failed to send typing action", "chat_id", chatID, "error", err)
	}
}

// IsRunning reports whether the bot is polling
func (b *Bot) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}
