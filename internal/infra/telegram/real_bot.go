package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"invoice-qa-review/internal/application"
	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/domain/model"
	"invoice-qa-review/internal/infra/logging"
	"invoice-qa-review/internal/infra/metrics"
)

// maxMessageLen is Telegram's limit for one text message.
const maxMessageLen = 4096

const helpText = "Send a ServiceTrade ID to review its invoice.\n" +
	"/job <id> - review a job\n" +
	"/invoice <id> - review the job behind an invoice\n" +
	"A bare ID uses the %s mode.\n/help - this message"

// Reviewer is the slice of the review facade the bot needs.
type Reviewer interface {
	HandleReview(ctx context.Context, input string, mode model.ResolveMode) model.ReviewView
}

// sender is the part of tgbotapi.BotAPI used to reply.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ReviewBot answers review commands over long polling.
// Updates are handled one at a time, in arrival order.
type ReviewBot struct {
	bot         *tgbotapi.BotAPI
	out         sender
	reviewer    Reviewer
	defaultMode model.ResolveMode
	allowed     map[int64]struct{}
	log         *zerolog.Logger
}

// NewReviewBot creates the bot. An empty AllowedChats admits every chat.
func NewReviewBot(cfg *config.BotConfig, reviewer Reviewer, defaultMode model.ResolveMode, logger *zerolog.Logger) (*ReviewBot, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if reviewer == nil {
		return nil, errors.New("reviewer is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	b := newReviewBot(bot, reviewer, defaultMode, cfg.AllowedChats, logger)
	b.bot = bot
	return b, nil
}

func newReviewBot(out sender, reviewer Reviewer, defaultMode model.ResolveMode, allowedChats []int64, logger *zerolog.Logger) *ReviewBot {
	if logger == nil {
		logger = logging.Nop()
	}
	if defaultMode == "" {
		defaultMode = model.ModeJob
	}
	allowed := make(map[int64]struct{}, len(allowedChats))
	for _, id := range allowedChats {
		allowed[id] = struct{}{}
	}
	return &ReviewBot{out: out, reviewer: reviewer, defaultMode: defaultMode, allowed: allowed, log: logger}
}

// StartPolling handles updates until ctx is canceled.
func (r *ReviewBot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)
	r.log.Info().Str("bot", r.bot.Self.UserName).Msg("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := r.handleUpdate(ctx, update); err != nil {
				r.log.Error().Err(err).Int("update_id", update.UpdateID).Msg("telegram: handle update")
			}
		}
	}
}

func (r *ReviewBot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID
	ctx = logging.WithChatID(ctx, chatID)

	if !r.isAllowed(chatID) {
		metrics.IncTelegramRejected()
		logging.With(ctx, r.log).Warn().Msg("telegram: chat not allowed")
		return r.reply(chatID, "This chat is not allowed to request reviews.")
	}

	cmd := parseCommand(msg.Text, r.defaultMode)
	metrics.IncTelegramCommand(cmd.name)
	switch cmd.name {
	case "help", "start":
		return r.reply(chatID, fmt.Sprintf(helpText, r.defaultMode))
	case "unknown":
		return r.reply(chatID, "Unknown command. Send /help for the list of commands.")
	}

	// best-effort typing indicator while the review runs
	_, _ = r.out.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	view := r.reviewer.HandleReview(ctx, cmd.identifier, cmd.mode)
	return r.reply(chatID, application.FormatText(view))
}

// reply sends text, split over several messages when it exceeds the limit.
func (r *ReviewBot) reply(chatID int64, text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		if _, err := r.out.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReviewBot) isAllowed(chatID int64) bool {
	if len(r.allowed) == 0 {
		return true
	}
	_, ok := r.allowed[chatID]
	return ok
}

type command struct {
	name       string // "review", "help", "start" or "unknown"
	mode       model.ResolveMode
	identifier string
}

// parseCommand understands "/job <id>", "/invoice <id>", "/help" and a bare ID.
// Bot-addressed forms like "/job@qa_bot 42" are accepted.
func parseCommand(text string, defaultMode model.ResolveMode) command {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return command{name: "review", mode: defaultMode, identifier: text}
	}
	head, rest, _ := strings.Cut(text, " ")
	head, _, _ = strings.Cut(strings.ToLower(head[1:]), "@")
	rest = strings.TrimSpace(rest)
	switch head {
	case "job":
		return command{name: "review", mode: model.ModeJob, identifier: rest}
	case "invoice":
		return command{name: "review", mode: model.ModeInvoice, identifier: rest}
	case "help", "start":
		return command{name: head}
	default:
		return command{name: "unknown"}
	}
}

// splitMessage cuts s into chunks of at most max bytes whose concatenation is
// s. Cuts prefer the last newline in the second half of a chunk and never
// split a UTF-8 sequence.
func splitMessage(s string, max int) []string {
	var parts []string
	for len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if nl := strings.LastIndexByte(s[:cut], '\n'); nl >= max/2 {
			cut = nl + 1
		}
		parts = append(parts, s[:cut])
		s = s[cut:]
	}
	return append(parts, s)
}
