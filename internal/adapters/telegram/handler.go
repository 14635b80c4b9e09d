package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"hermes/internal/domain/session"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

const helpText = `Available commands:
/analyze - run a block trade analysis
/status - show the state of the current dialog
/cancel - cancel the current dialog or analysis
/help - show this message`

const startText = `Hi! I analyze cryptocurrency option block trades.

Send /analyze to pick an asset and a lookback window; I will reply with option flow, technical, news and risk summaries plus a trading recommendation.`

// AnalysisService starts and controls analysis runs on behalf of chats
type AnalysisService interface {
	// Start launches an analysis in the background. A second start for the
	// same chat while one is running fails with errors.ErrAnalysisRunning.
	Start(ctx context.Context, chatID int64, currency string, days int) error

	// Running reports whether an analysis is in flight for the chat
	Running(chatID int64) bool

	// Cancel stops the chat's running analysis, reporting whether there was one
	Cancel(chatID int64) bool
}

// Handler drives the per-chat analysis dialog: currency choice, lookback
// choice, then a background run. Dialog state lives in Redis so restarts do
// not strand users mid-dialog.
type Handler struct {
	bot      *Bot
	sessions session.Repository
	service  AnalysisService

	minDays int
	maxDays int

	log *logger.Logger
}

// NewHandler creates the dialog handler
func NewHandler(bot *Bot, sessions session.Repository, service AnalysisService, minDays, maxDays int) *Handler {
	return &Handler{
		bot:      bot,
		sessions: sessions,
		service:  service,
		minDays:  minDays,
		maxDays:  maxDays,
		log:      logger.Get().With("component", "telegram_handler"),
	}
}

// HandleUpdate routes one incoming update
func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		h.handleCommand(ctx, chatID, msg.Command())
		return
	}

	s := h.session(ctx, chatID)
	if s.State == session.StateChoosingDays {
		h.handleDaysInput(ctx, s, strings.TrimSpace(msg.Text))
		return
	}

	h.reply(ctx, chatID, "Send /analyze to start an analysis or /help for the command list.")
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start":
		h.reply(ctx, chatID, startText)
	case "help":
		h.reply(ctx, chatID, helpText)
	case "analyze":
		h.startDialog(ctx, chatID)
	case "status":
		h.reportStatus(ctx, chatID)
	case "cancel":
		h.cancel(ctx, chatID)
	default:
		h.reply(ctx, chatID, "Unknown command. Send /help for the command list.")
	}
}

func (h *Handler) startDialog(ctx context.Context, chatID int64) {
	if h.service.Running(chatID) {
		h.reply(ctx, chatID, "An analysis is already running for this chat. Wait for it to finish or send /cancel.")
		return
	}

	s := h.session(ctx, chatID)
	s.Reset()
	s.Transition(session.StateChoosingCurrency)
	h.save(ctx, s)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Bitcoin (BTC)", "currency:BTC"),
			tgbotapi.NewInlineKeyboardButtonData("Ethereum (ETH)", "currency:ETH"),
		),
	)
	if err := h.bot.SendMessageWithKeyboard(ctx, chatID, "Which asset should I analyze?", keyboard); err != nil {
		h.log.Errorw("failed to send currency keyboard", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	if err := h.bot.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		h.log.Debugw("failed to answer callback", "chat_id", chatID, "error", err)
	}

	parts := strings.SplitN(cb.Data, ":", 2)
	if len(parts) != 2 {
		return
	}

	s := h.session(ctx, chatID)
	switch parts[0] {
	case "currency":
		if s.State != session.StateChoosingCurrency {
			return
		}
		h.chooseCurrency(ctx, s, parts[1])
	case "days":
		if s.State != session.StateChoosingDays {
			return
		}
		h.handleDaysInput(ctx, s, parts[1])
	}
}

func (h *Handler) chooseCurrency(ctx context.Context, s *session.Session, currency string) {
	s.Currency = currency
	s.Transition(session.StateChoosingDays)
	h.save(ctx, s)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("30 days", "days:30"),
			tgbotapi.NewInlineKeyboardButtonData("90 days", "days:90"),
			tgbotapi.NewInlineKeyboardButtonData("180 days", "days:180"),
		),
	)
	text := fmt.Sprintf("How many days of history? Pick an option or type a number between %d and %d.",
		h.minDays, h.maxDays)
	if err := h.bot.SendMessageWithKeyboard(ctx, s.ChatID, text, keyboard); err != nil {
		h.log.Errorw("failed to send days keyboard", "chat_id", s.ChatID, "error", err)
	}
}

func (h *Handler) handleDaysInput(ctx context.Context, s *session.Session, input string) {
	days, err := strconv.Atoi(input)
	if err != nil || days < h.minDays || days > h.maxDays {
		h.reply(ctx, s.ChatID, fmt.Sprintf("Please send a whole number of days between %d and %d.",
			h.minDays, h.maxDays))
		return
	}

	s.Days = days
	s.Transition(session.StateProcessing)
	h.save(ctx, s)

	h.bot.SendTyping(s.ChatID)

	if err := h.service.Start(ctx, s.ChatID, s.Currency, days); err != nil {
		if errors.Is(err, errors.ErrAnalysisRunning) {
			h.reply(ctx, s.ChatID, "An analysis is already running for this chat.")
			return
		}
		h.log.Errorw("failed to start analysis", "chat_id", s.ChatID, "error", err)
		h.reply(ctx, s.ChatID, "Could not start the analysis, please try again later.")
		s.Reset()
		h.save(ctx, s)
		return
	}

	h.reply(ctx, s.ChatID, fmt.Sprintf("Analyzing %s over the last %d days. I will send the report here when it is ready.",
		s.Currency, days))
}

func (h *Handler) reportStatus(ctx context.Context, chatID int64) {
	if h.service.Running(chatID) {
		h.reply(ctx, chatID, "An analysis is running. I will post the report as soon as it finishes.")
		return
	}

	s := h.session(ctx, chatID)
	switch s.State {
	case session.StateChoosingCurrency:
		h.reply(ctx, chatID, "Waiting for you to pick an asset.")
	case session.StateChoosingDays:
		h.reply(ctx, chatID, "Waiting for the number of days to analyze.")
	default:
		h.reply(ctx, chatID, "No analysis in progress. Send /analyze to start one.")
	}
}

func (h *Handler) cancel(ctx context.Context, chatID int64) {
	canceled := h.service.Cancel(chatID)

	if err := h.sessions.Delete(ctx, chatID); err != nil {
		h.log.Warnw("failed to delete session", "chat_id", chatID, "error", err)
	}

	if canceled {
		h.reply(ctx, chatID, "Analysis canceled.")
	} else {
		h.reply(ctx, chatID, "Nothing to cancel.")
	}
}

// session loads the chat's dialog session, creating an idle one when missing
func (h *Handler) session(ctx context.Context, chatID int64) *session.Session {
	s, err := h.sessions.Get(ctx, chatID)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			h.log.Warnw("failed to load session", "chat_id", chatID, "error", err)
		}
		return session.New(chatID)
	}
	return s
}

func (h *Handler) save(ctx context.Context, s *session.Session) {
	if err := h.sessions.Save(ctx, s); err != nil {
		h.log.Warnw("failed to save session", "chat_id", s.ChatID, "error", err)
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.bot.SendMessageWithContext(ctx, chatID, text); err != nil {
		h.log.Errorw("failed to send reply", "chat_id", chatID, "error", err)
	}
}
