package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/recapbot/recapbot/internal/domain"
)

func (h *Handler) handleSetup(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	if !domain.ParseChatKind(string(msg.Chat.Type)).IsGroup() {
		h.reply(ctx, msg.Chat.ID, "Run /setup inside the group you want me to summarize.")
		return
	}
	if !h.isChatAdmin(ctx, msg.Chat.ID, msg.From.ID) {
		h.reply(ctx, msg.Chat.ID, "🔒 Only group admins can run /setup.")
		return
	}

	cfg, err := h.groups.Get(ctx, msg.Chat.ID)
	if err == nil && !cfg.Pending() {
		h.reply(ctx, msg.Chat.ID, "✅ This group is already set up. Use /settings to adjust it.")
		return
	}
	if err != nil && !errors.Is(err, domain.ErrGroupNotFound) {
		slog.Error("get group", "error", err, "chat_id", msg.Chat.ID)
		return
	}

	if err := h.groups.CreatePending(ctx, msg.Chat.ID, msg.From.ID); err != nil {
		slog.Error("create pending group", "error", err, "chat_id", msg.Chat.ID)
		h.reply(ctx, msg.Chat.ID, "❌ Setup failed, please try again.")
		return
	}

	h.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"🔧 Almost there, %s. Send a private message to @%s:\n\n/apikey <your API key>\n\nI'll start summarizing once the key is in place.",
		msg.From.FirstName, h.botUsername,
	))
}

func (h *Handler) handleAPIKey(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	if domain.ParseChatKind(string(msg.Chat.Type)) != domain.ChatPrivate {
		// Never let a key sit in a group chat.
		b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: msg.Chat.ID, MessageID: msg.ID})
		h.reply(ctx, msg.Chat.ID, "⚠️ Send /apikey to me in a private chat, not in the group.")
		return
	}

	key := commandArgs(msg.Text)
	if key == "" || strings.ContainsAny(key, " \n") {
		h.reply(ctx, msg.Chat.ID, "Usage: /apikey <key>")
		return
	}

	pending, err := h.groups.PendingFor(ctx, msg.From.ID)
	if err != nil {
		slog.Error("list pending groups", "error", err, "user_id", msg.From.ID)
		h.reply(ctx, msg.Chat.ID, "❌ Something went wrong, please try again.")
		return
	}
	if len(pending) == 0 {
		h.reply(ctx, msg.Chat.ID, "No group is waiting for a key. Run /setup in your group first.")
		return
	}

	ref, err := h.codec.Seal(ctx, key)
	if err != nil {
		slog.Error("seal api key", "error", err)
		h.reply(ctx, msg.Chat.ID, "❌ Could not store the key, please try again.")
		return
	}

	done := 0
	for _, chatID := range pending {
		if err := h.groups.SetCredential(ctx, chatID, ref); err != nil {
			slog.Error("attach credential", "error", err, "chat_id", chatID)
			continue
		}
		done++
	}

	// Remove the plaintext key from the chat history.
	b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: msg.Chat.ID, MessageID: msg.ID})

	if done == 0 {
		h.reply(ctx, msg.Chat.ID, "❌ Could not attach the key to any group, please try again.")
		return
	}
	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Key stored. Setup is complete for %d group(s).", done))
}

func (h *Handler) handleEnable(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setEnabled(ctx, update, true, "▶️ Summaries are enabled again.")
}

func (h *Handler) handleDisable(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setEnabled(ctx, update, false, "⏸ Summaries are paused. Use /enable to resume.")
}

func (h *Handler) setEnabled(ctx context.Context, update *models.Update, enabled bool, confirmation string) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	if !domain.ParseChatKind(string(msg.Chat.Type)).IsGroup() {
		return
	}
	if !h.isChatAdmin(ctx, msg.Chat.ID, msg.From.ID) {
		h.reply(ctx, msg.Chat.ID, "🔒 Only group admins can do that.")
		return
	}

	if err := h.groups.SetEnabled(ctx, msg.Chat.ID, enabled); err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			h.reply(ctx, msg.Chat.ID, "This group is not set up yet. Run /setup first.")
			return
		}
		slog.Error("set enabled", "error", err, "chat_id", msg.Chat.ID)
		return
	}
	h.reply(ctx, msg.Chat.ID, confirmation)
}
