package service

import (
	"strings"

	"github.com/recapbot/recapbot/internal/domain"
)

// FilterMessages applies the group's exclusion predicates and returns the
// surviving subsequence in original order. An empty result is a valid
// outcome, not an error.
func FilterMessages(msgs []domain.Message, s domain.GroupSettings) []domain.Message {
	out := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if s.ExcludeBotMessages && isBotIdentity(m) {
			continue
		}
		if s.ExcludeCommands && strings.HasPrefix(m.Content, "/") {
			continue
		}
		if m.UserID != nil && s.IsExcludedUser(*m.UserID) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Telegram requires bot usernames to end in "bot", so the display identity
// is enough to spot bot-originated messages.
func isBotIdentity(m domain.Message) bool {
	return strings.HasSuffix(strings.ToLower(m.Username), "bot")
}
