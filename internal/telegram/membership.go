package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/recapbot/recapbot/internal/domain"
)

// MembershipChecker probes whether the bot still participates in a chat.
type MembershipChecker struct {
	b *bot.Bot
}

func NewMembershipChecker(b *bot.Bot) *MembershipChecker {
	return &MembershipChecker{b: b}
}

// IsStillMember returns (false, nil) only on a definitive removal signal.
// Transient transport failures surface as domain.ErrMembershipIndeterminate
// so callers never delete a config on a flaky lookup.
func (m *MembershipChecker) IsStillMember(ctx context.Context, chatID int64) (bool, error) {
	_, err := m.b.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err == nil {
		return true, nil
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "chat not found") ||
		strings.Contains(msg, "bot was kicked") ||
		strings.Contains(msg, "bot is not a member") ||
		strings.Contains(msg, "group chat was deleted") {
		return false, nil
	}

	return false, fmt.Errorf("%w: %v", domain.ErrMembershipIndeterminate, err)
}
