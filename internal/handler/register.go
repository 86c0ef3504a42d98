package handler

import (
	"github.com/go-telegram/bot"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/setup", bot.MatchTypePrefix, h.handleSetup)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/apikey", bot.MatchTypePrefix, h.handleAPIKey)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/summary", bot.MatchTypePrefix, h.handleSummary)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypePrefix, h.handleSettings)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/prompt", bot.MatchTypePrefix, h.handlePrompt)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/exclude", bot.MatchTypePrefix, h.handleExclude)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/include", bot.MatchTypePrefix, h.handleInclude)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/enable", bot.MatchTypePrefix, h.handleEnable)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/disable", bot.MatchTypePrefix, h.handleDisable)

	// Settings callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "style_", bot.MatchTypePrefix, h.handleSettingsCallback)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "toggle_", bot.MatchTypePrefix, h.handleSettingsCallback)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "freq_", bot.MatchTypePrefix, h.handleSettingsCallback)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "time_", bot.MatchTypePrefix, h.handleSettingsCallback)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "settings_close", bot.MatchTypeExact, h.handleSettingsClose)
}
