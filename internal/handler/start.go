package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/recapbot/recapbot/internal/domain"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	kind := domain.ParseChatKind(string(update.Message.Chat.Type))
	if kind.IsGroup() {
		h.reply(ctx, update.Message.Chat.ID, "👋 I summarize group conversations. An admin can run /setup to get started.")
		return
	}

	h.reply(ctx, update.Message.Chat.ID,
		"👋 I'm a chat recap bot.\n\n"+
			"Add me to a group and run /setup there as an admin. "+
			"Then send me /apikey <key> here in private to finish setup.\n\n"+
			"In the group:\n"+
			"• /summary — recap the last hour\n"+
			"• /summary 200 — recap the last 200 messages\n"+
			"• /summary 3 days — recap a timeframe\n"+
			"• /settings — style, filters and scheduled digests")
}
