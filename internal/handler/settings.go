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
	"github.com/recapbot/recapbot/internal/service"
	tg "github.com/recapbot/recapbot/internal/telegram"
)

var scheduleTimeOptions = []string{"06:00", "09:00", "12:00", "18:00", "21:00"}

func (h *Handler) handleSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	if !domain.ParseChatKind(string(msg.Chat.Type)).IsGroup() {
		return
	}
	if !h.isChatAdmin(ctx, chatID, msg.From.ID) {
		h.reply(ctx, chatID, "🔒 Only group admins can change settings.")
		return
	}
	if _, err := h.groups.Get(ctx, chatID); err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			h.reply(ctx, chatID, "This group is not set up yet. Run /setup first.")
		}
		return
	}

	settings, err := h.groups.GetSettings(ctx, chatID)
	if err != nil {
		slog.Error("get settings", "error", err, "chat_id", chatID)
		return
	}

	text, markup := renderSettings(settings)
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: markup,
	})
	if err != nil {
		slog.Error("send settings menu", "error", err, "chat_id", chatID)
	}
}

// handleSettingsCallback translates a button tap into a reducer action,
// persists the result and re-renders the menu.
func (h *Handler) handleSettingsCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil || cq.Message.Message == nil {
		return
	}

	chatID := cq.Message.Message.Chat.ID
	if !h.isChatAdmin(ctx, chatID, cq.From.ID) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: cq.ID,
			Text:            "Admins only",
		})
		return
	}

	action, ok := callbackAction(cq.Data)
	if !ok {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID})
		return
	}

	settings, err := h.groups.GetSettings(ctx, chatID)
	if err != nil {
		slog.Error("get settings", "error", err, "chat_id", chatID)
		return
	}

	settings = service.ApplySettingsAction(settings, action)
	if err := h.groups.SaveSettings(ctx, settings); err != nil {
		slog.Error("save settings", "error", err, "chat_id", chatID)
		return
	}

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID})

	text, markup := renderSettings(settings)
	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   cq.Message.Message.ID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: markup,
	})
}

func (h *Handler) handleSettingsClose(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil || cq.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID})
	b.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    cq.Message.Message.Chat.ID,
		MessageID: cq.Message.Message.ID,
	})
}

func callbackAction(data string) (service.SettingsAction, bool) {
	switch {
	case strings.HasPrefix(data, "style_"):
		style, ok := domain.ParseSummaryStyle(strings.TrimPrefix(data, "style_"))
		if !ok {
			return nil, false
		}
		return service.SetStyle{Style: style}, true
	case data == "toggle_bots":
		return service.ToggleExcludeBots{}, true
	case data == "toggle_cmds":
		return service.ToggleExcludeCommands{}, true
	case data == "toggle_sched":
		return service.ToggleSchedule{}, true
	case strings.HasPrefix(data, "freq_"):
		return service.SetScheduleFrequency{Frequency: domain.ScheduleFrequency(strings.TrimPrefix(data, "freq_"))}, true
	case strings.HasPrefix(data, "time_"):
		return service.SetScheduleTime{Time: strings.TrimPrefix(data, "time_")}, true
	}
	return nil, false
}

func renderSettings(s domain.GroupSettings) (string, *models.InlineKeyboardMarkup) {
	onOff := func(v bool) string {
		if v {
			return "✅"
		}
		return "❌"
	}

	prompt := "default"
	if s.CustomPrompt != "" {
		prompt = "custom (/prompt to change)"
	}

	text := fmt.Sprintf(
		"⚙️ *Summary settings*\n\n"+
			"Style: *%s*\n"+
			"Prompt: *%s*\n"+
			"Skip bot messages: %s\n"+
			"Skip commands: %s\n"+
			"Excluded users: *%d*\n"+
			"Scheduled digest: %s (%s at %s UTC)",
		s.SummaryStyle, prompt,
		onOff(s.ExcludeBotMessages), onOff(s.ExcludeCommands),
		len(s.ExcludedUserIDs),
		onOff(s.ScheduleEnabled), s.ScheduleFrequency, s.ScheduleTime,
	)

	mark := func(active bool, label string) string {
		if active {
			return "• " + label
		}
		return label
	}

	var rows [][]models.InlineKeyboardButton
	rows = append(rows, tg.ButtonRow(
		tg.InlineButton(mark(s.SummaryStyle == domain.StyleDefault, "Default"), "style_default"),
		tg.InlineButton(mark(s.SummaryStyle == domain.StyleDetailed, "Detailed"), "style_detailed"),
		tg.InlineButton(mark(s.SummaryStyle == domain.StyleBrief, "Brief"), "style_brief"),
	))
	rows = append(rows, tg.ButtonRow(
		tg.InlineButton(mark(s.SummaryStyle == domain.StyleBullet, "Bullets"), "style_bullet"),
		tg.InlineButton(mark(s.SummaryStyle == domain.StyleTimeline, "Timeline"), "style_timeline"),
	))
	rows = append(rows, tg.ButtonRow(
		tg.InlineButton(fmt.Sprintf("🤖 Skip bots: %s", onOff(s.ExcludeBotMessages)), "toggle_bots"),
		tg.InlineButton(fmt.Sprintf("/ Skip commands: %s", onOff(s.ExcludeCommands)), "toggle_cmds"),
	))
	rows = append(rows, tg.ButtonRow(
		tg.InlineButton(fmt.Sprintf("🗞 Digest: %s", onOff(s.ScheduleEnabled)), "toggle_sched"),
	))
	if s.ScheduleEnabled {
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(mark(s.ScheduleFrequency == domain.FrequencyDaily, "Daily"), "freq_daily"),
			tg.InlineButton(mark(s.ScheduleFrequency == domain.FrequencyWeekly, "Weekly"), "freq_weekly"),
		))
		var timeRow []models.InlineKeyboardButton
		for _, t := range scheduleTimeOptions {
			timeRow = append(timeRow, tg.InlineButton(mark(s.ScheduleTime == t, t), "time_"+t))
		}
		rows = append(rows, timeRow)
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("Close", "settings_close")))

	return text, tg.InlineKeyboard(rows...)
}

// handlePrompt sets, shows or resets the custom prompt template. The
// template may contain a {messages} placeholder for the transcript.
func (h *Handler) handlePrompt(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	if !domain.ParseChatKind(string(msg.Chat.Type)).IsGroup() {
		return
	}
	if !h.isChatAdmin(ctx, chatID, msg.From.ID) {
		h.reply(ctx, chatID, "🔒 Only group admins can change the prompt.")
		return
	}

	settings, err := h.groups.GetSettings(ctx, chatID)
	if err != nil {
		slog.Error("get settings", "error", err, "chat_id", chatID)
		return
	}

	args := commandArgs(msg.Text)
	switch {
	case args == "":
		current := settings.CustomPrompt
		if current == "" {
			current = "(default style prompts)"
		}
		h.reply(ctx, chatID, "Current prompt:\n\n"+current+"\n\nSet with /prompt <template>, reset with /prompt reset. Use {messages} for the transcript.")
		return
	case args == "reset":
		settings = service.ApplySettingsAction(settings, service.ClearCustomPrompt{})
	default:
		settings = service.ApplySettingsAction(settings, service.SetCustomPrompt{Prompt: args})
	}

	if err := h.groups.SaveSettings(ctx, settings); err != nil {
		slog.Error("save settings", "error", err, "chat_id", chatID)
		return
	}
	h.reply(ctx, chatID, "✅ Prompt updated.")
}

func (h *Handler) handleExclude(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.toggleExcludedUser(ctx, update, true)
}

func (h *Handler) handleInclude(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.toggleExcludedUser(ctx, update, false)
}

// toggleExcludedUser adds or removes the replied-to user from the exclusion
// set.
func (h *Handler) toggleExcludedUser(ctx context.Context, update *models.Update, exclude bool) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	if !domain.ParseChatKind(string(msg.Chat.Type)).IsGroup() {
		return
	}
	if !h.isChatAdmin(ctx, chatID, msg.From.ID) {
		h.reply(ctx, chatID, "🔒 Only group admins can do that.")
		return
	}
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		h.reply(ctx, chatID, "Reply to a message from the user you want to exclude or include.")
		return
	}

	settings, err := h.groups.GetSettings(ctx, chatID)
	if err != nil {
		slog.Error("get settings", "error", err, "chat_id", chatID)
		return
	}

	target := msg.ReplyToMessage.From
	if exclude {
		settings = service.ApplySettingsAction(settings, service.ExcludeUser{UserID: target.ID})
	} else {
		settings = service.ApplySettingsAction(settings, service.IncludeUser{UserID: target.ID})
	}

	if err := h.groups.SaveSettings(ctx, settings); err != nil {
		slog.Error("save settings", "error", err, "chat_id", chatID)
		return
	}

	if exclude {
		h.reply(ctx, chatID, fmt.Sprintf("🙈 Messages from %s will be left out of summaries.", target.FirstName))
	} else {
		h.reply(ctx, chatID, fmt.Sprintf("👀 Messages from %s are included again.", target.FirstName))
	}
}
