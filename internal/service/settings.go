package service

import (
	"regexp"

	"github.com/recapbot/recapbot/internal/domain"
)

// SettingsAction is a menu transition over GroupSettings. Actions are applied
// by the pure reducer ApplySettingsAction; the UI layer only constructs them.
type SettingsAction interface {
	settingsAction()
}

type SetStyle struct{ Style domain.SummaryStyle }
type ToggleExcludeBots struct{}
type ToggleExcludeCommands struct{}
type ExcludeUser struct{ UserID int64 }
type IncludeUser struct{ UserID int64 }
type ToggleSchedule struct{}
type SetScheduleFrequency struct{ Frequency domain.ScheduleFrequency }
type SetScheduleTime struct{ Time string }
type SetCustomPrompt struct{ Prompt string }
type ClearCustomPrompt struct{}

func (SetStyle) settingsAction()              {}
func (ToggleExcludeBots) settingsAction()     {}
func (ToggleExcludeCommands) settingsAction() {}
func (ExcludeUser) settingsAction()           {}
func (IncludeUser) settingsAction()           {}
func (ToggleSchedule) settingsAction()        {}
func (SetScheduleFrequency) settingsAction()  {}
func (SetScheduleTime) settingsAction()       {}
func (SetCustomPrompt) settingsAction()       {}
func (ClearCustomPrompt) settingsAction()     {}

var scheduleTimeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ApplySettingsAction returns the settings after the transition. Invalid
// actions leave the settings unchanged.
func ApplySettingsAction(s domain.GroupSettings, a SettingsAction) domain.GroupSettings {
	switch act := a.(type) {
	case SetStyle:
		if _, ok := domain.ParseSummaryStyle(string(act.Style)); ok {
			s.SummaryStyle = act.Style
		}
	case ToggleExcludeBots:
		s.ExcludeBotMessages = !s.ExcludeBotMessages
	case ToggleExcludeCommands:
		s.ExcludeCommands = !s.ExcludeCommands
	case ExcludeUser:
		if !s.IsExcludedUser(act.UserID) {
			ids := make([]int64, len(s.ExcludedUserIDs), len(s.ExcludedUserIDs)+1)
			copy(ids, s.ExcludedUserIDs)
			s.ExcludedUserIDs = append(ids, act.UserID)
		}
	case IncludeUser:
		ids := make([]int64, 0, len(s.ExcludedUserIDs))
		for _, id := range s.ExcludedUserIDs {
			if id != act.UserID {
				ids = append(ids, id)
			}
		}
		s.ExcludedUserIDs = ids
	case ToggleSchedule:
		s.ScheduleEnabled = !s.ScheduleEnabled
	case SetScheduleFrequency:
		if act.Frequency == domain.FrequencyDaily || act.Frequency == domain.FrequencyWeekly {
			s.ScheduleFrequency = act.Frequency
		}
	case SetScheduleTime:
		if scheduleTimeRe.MatchString(act.Time) {
			s.ScheduleTime = act.Time
		}
	case SetCustomPrompt:
		s.CustomPrompt = act.Prompt
	case ClearCustomPrompt:
		s.CustomPrompt = ""
	}
	return s
}
