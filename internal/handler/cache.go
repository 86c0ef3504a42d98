package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/recapbot/recapbot/internal/domain"
)

// HandleCacheMessage caches group text messages for later summarization.
// It handles both new and edited messages; edits update the cached content
// in place. Chats without a config are ignored.
func (h *Handler) HandleCacheMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil {
		return
	}

	content := msg.Text
	if content == "" {
		content = msg.Caption
	}
	if content == "" {
		return
	}

	if _, err := h.groups.Get(ctx, msg.Chat.ID); err != nil {
		if !errors.Is(err, domain.ErrGroupNotFound) {
			slog.Error("get group", "error", err, "chat_id", msg.Chat.ID)
		}
		return
	}

	m := domain.Message{
		ChatID:    msg.Chat.ID,
		MessageID: int64(msg.ID),
		Content:   content,
		SentAt:    time.Unix(int64(msg.Date), 0).UTC(),
	}
	if msg.From != nil {
		userID := msg.From.ID
		m.UserID = &userID
		m.Username = msg.From.Username
		m.DisplayName = strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	}

	if err := h.messages.Upsert(ctx, m); err != nil {
		slog.Error("cache message", "error", err, "chat_id", m.ChatID, "message_id", m.MessageID)
	}
}
