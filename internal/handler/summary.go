package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/recapbot/recapbot/internal/config"
	"github.com/recapbot/recapbot/internal/domain"
	"github.com/recapbot/recapbot/internal/service"
	tg "github.com/recapbot/recapbot/internal/telegram"
)

// handleSummary runs the interactive pipeline: rate limit, window parse,
// fetch, filter, summarize, render.
func (h *Handler) handleSummary(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	if !domain.ParseChatKind(string(msg.Chat.Type)).IsGroup() {
		h.reply(ctx, chatID, "Summaries work in groups. Add me to a group and run /setup there.")
		return
	}

	cfg, err := h.groups.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			h.reply(ctx, chatID, "This group is not set up yet. An admin can run /setup.")
			return
		}
		slog.Error("get group", "error", err, "chat_id", chatID)
		return
	}
	if cfg.Pending() {
		h.reply(ctx, chatID, "🔧 Setup is not complete: the API key is missing. The admin who ran /setup can DM me /apikey <key>.")
		return
	}
	if !cfg.Enabled {
		h.reply(ctx, chatID, "⏸ Summaries are paused in this group. An admin can /enable them.")
		return
	}

	// The limiter runs before any repository access.
	if wait := h.limiter.Wait(chatID, msg.From.ID); wait > 0 {
		h.reply(ctx, chatID, fmt.Sprintf("⏳ Please wait %d seconds before requesting another summary.", int(wait.Seconds())+1))
		return
	}

	settings, err := h.groups.GetSettings(ctx, chatID)
	if err != nil {
		slog.Error("get settings", "error", err, "chat_id", chatID)
		return
	}

	sel := service.ParseSelection(commandArgs(msg.Text), time.Now().UTC())

	var msgs []domain.Message
	switch sel.Kind {
	case service.SelectCount:
		msgs, err = h.messages.LastN(ctx, chatID, sel.Count)
	default:
		msgs, err = h.messages.Since(ctx, chatID, sel.Since, config.MaxMessageCount)
	}
	if err != nil {
		slog.Error("fetch messages", "error", err, "chat_id", chatID)
		h.reply(ctx, chatID, "❌ Could not load messages, please try again.")
		return
	}

	msgs = service.FilterMessages(msgs, settings)
	if len(msgs) == 0 {
		h.reply(ctx, chatID, service.NothingToSummarize)
		return
	}

	apiKey, err := h.codec.Reveal(ctx, *cfg.APIKeySecretRef)
	if err != nil {
		slog.Error("reveal credential", "error", err, "chat_id", chatID)
		h.reply(ctx, chatID, "🔑 The group's API key could not be read. An admin can set a new one with /apikey.")
		return
	}

	stopTyping := tg.StartTyping(ctx, b, chatID)
	text, err := h.summarizer.Summarize(ctx, apiKey, msgs, settings)
	stopTyping()
	if err != nil {
		slog.Error("summarize", "error", err, "chat_id", chatID, "messages", len(msgs))
		h.reply(ctx, chatID, summaryErrorText(err))
		return
	}

	header := fmt.Sprintf("📝 *Summary* (%s)\n\n", describeSelection(sel, len(msgs)))
	replyTo := msg.ID
	if err := tg.SendLongMessage(ctx, b, chatID, header+text, &replyTo); err != nil {
		slog.Error("send summary", "error", err, "chat_id", chatID)
	}
}

func describeSelection(sel service.Selection, count int) string {
	if sel.Kind == service.SelectCount {
		return fmt.Sprintf("last %d messages", count)
	}
	if sel.Hours%24 == 0 && sel.Hours >= 24 {
		days := sel.Hours / 24
		if days == 1 {
			return fmt.Sprintf("last day, %d messages", count)
		}
		return fmt.Sprintf("last %d days, %d messages", days, count)
	}
	if sel.Hours == 1 {
		return fmt.Sprintf("last hour, %d messages", count)
	}
	return fmt.Sprintf("last %d hours, %d messages", sel.Hours, count)
}

// summaryErrorText maps the generation failure taxonomy to one-line
// actionable messages. Background paths never show these; they log instead.
func summaryErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrCredentialInvalid):
		return "🔑 The group's API key was rejected. An admin can update it by sending me /apikey <key> in private."
	case errors.Is(err, domain.ErrPermissionDenied):
		return "🚫 The API key doesn't have access to the configured model."
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "📉 The API quota or rate limit was hit. Try again in a few minutes."
	case errors.Is(err, domain.ErrGenerationTimeout):
		return "⌛ The model took too long to respond. Try a smaller window."
	case errors.Is(err, domain.ErrGenerationNetwork):
		return "🌐 Could not reach the model endpoint. Try again shortly."
	default:
		return "❌ Summarization failed. Try again, or with a smaller window."
	}
}
