package service

import (
	"testing"

	"github.com/recapbot/recapbot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestApplySettingsAction(t *testing.T) {
	base := domain.DefaultSettings(-100)

	t.Run("set style", func(t *testing.T) {
		out := ApplySettingsAction(base, SetStyle{Style: domain.StyleBullet})
		assert.Equal(t, domain.StyleBullet, out.SummaryStyle)
	})

	t.Run("invalid style ignored", func(t *testing.T) {
		out := ApplySettingsAction(base, SetStyle{Style: "haiku"})
		assert.Equal(t, base.SummaryStyle, out.SummaryStyle)
	})

	t.Run("toggles flip", func(t *testing.T) {
		out := ApplySettingsAction(base, ToggleExcludeBots{})
		assert.Equal(t, !base.ExcludeBotMessages, out.ExcludeBotMessages)
		out = ApplySettingsAction(out, ToggleExcludeBots{})
		assert.Equal(t, base.ExcludeBotMessages, out.ExcludeBotMessages)
	})

	t.Run("exclude and include user", func(t *testing.T) {
		out := ApplySettingsAction(base, ExcludeUser{UserID: 42})
		assert.True(t, out.IsExcludedUser(42))

		// excluding twice does not duplicate
		out = ApplySettingsAction(out, ExcludeUser{UserID: 42})
		assert.Len(t, out.ExcludedUserIDs, 1)

		out = ApplySettingsAction(out, IncludeUser{UserID: 42})
		assert.False(t, out.IsExcludedUser(42))
	})

	t.Run("reducer does not mutate its input", func(t *testing.T) {
		in := domain.DefaultSettings(-100)
		in.ExcludedUserIDs = []int64{1, 2}
		_ = ApplySettingsAction(in, ExcludeUser{UserID: 3})
		assert.Equal(t, []int64{1, 2}, in.ExcludedUserIDs)
	})

	t.Run("schedule transitions", func(t *testing.T) {
		out := ApplySettingsAction(base, ToggleSchedule{})
		assert.True(t, out.ScheduleEnabled)

		out = ApplySettingsAction(out, SetScheduleFrequency{Frequency: domain.FrequencyWeekly})
		assert.Equal(t, domain.FrequencyWeekly, out.ScheduleFrequency)

		out = ApplySettingsAction(out, SetScheduleFrequency{Frequency: "hourly"})
		assert.Equal(t, domain.FrequencyWeekly, out.ScheduleFrequency, "unknown frequency ignored")

		out = ApplySettingsAction(out, SetScheduleTime{Time: "18:00"})
		assert.Equal(t, "18:00", out.ScheduleTime)

		out = ApplySettingsAction(out, SetScheduleTime{Time: "25:99"})
		assert.Equal(t, "18:00", out.ScheduleTime, "invalid time ignored")
	})

	t.Run("custom prompt set and clear", func(t *testing.T) {
		out := ApplySettingsAction(base, SetCustomPrompt{Prompt: "recap like a pirate"})
		assert.Equal(t, "recap like a pirate", out.CustomPrompt)

		out = ApplySettingsAction(out, ClearCustomPrompt{})
		assert.Empty(t, out.CustomPrompt)
	})
}
