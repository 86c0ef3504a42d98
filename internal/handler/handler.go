package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/recapbot/recapbot/internal/config"
	"github.com/recapbot/recapbot/internal/repository"
	"github.com/recapbot/recapbot/internal/secret"
	"github.com/recapbot/recapbot/internal/service"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot         *bot.Bot
	cfg         *config.Config
	messages    *repository.Messages
	groups      *repository.Groups
	codec       *secret.Codec
	summarizer  *service.Summarizer
	limiter     *service.IntervalLimiter
	botUsername string
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot         *bot.Bot
	Cfg         *config.Config
	Messages    *repository.Messages
	Groups      *repository.Groups
	Codec       *secret.Codec
	Summarizer  *service.Summarizer
	Limiter     *service.IntervalLimiter
	BotUsername string
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:         deps.Bot,
		cfg:         deps.Cfg,
		messages:    deps.Messages,
		groups:      deps.Groups,
		codec:       deps.Codec,
		summarizer:  deps.Summarizer,
		limiter:     deps.Limiter,
		botUsername: deps.BotUsername,
	}
}

// commandArgs strips the command token (including an optional @botname
// suffix) and returns the remaining argument string.
func commandArgs(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// isChatAdmin reports whether the user is an owner or administrator of the chat.
func (h *Handler) isChatAdmin(ctx context.Context, chatID, userID int64) bool {
	member, err := h.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil || member == nil {
		return false
	}
	return member.Type == models.ChatMemberTypeOwner || member.Type == models.ChatMemberTypeAdministrator
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
}
