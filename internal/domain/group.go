package domain

import (
	"time"

	"github.com/google/uuid"
)

type SummaryStyle string

const (
	StyleDefault  SummaryStyle = "default"
	StyleDetailed SummaryStyle = "detailed"
	StyleBrief    SummaryStyle = "brief"
	StyleBullet   SummaryStyle = "bullet"
	StyleTimeline SummaryStyle = "timeline"
)

// ParseSummaryStyle returns the style named by s, or StyleDefault and false
// when s is not a known style.
func ParseSummaryStyle(s string) (SummaryStyle, bool) {
	switch SummaryStyle(s) {
	case StyleDefault, StyleDetailed, StyleBrief, StyleBullet, StyleTimeline:
		return SummaryStyle(s), true
	}
	return StyleDefault, false
}

type ScheduleFrequency string

const (
	FrequencyDaily  ScheduleFrequency = "daily"
	FrequencyWeekly ScheduleFrequency = "weekly"
)

// GroupConfig exists once a chat begins setup. The config is pending until
// an API key reference is attached; pending and disabled groups are
// invisible to every summarization path.
type GroupConfig struct {
	ChatID          int64
	APIKeySecretRef *uuid.UUID
	Enabled         bool
	SetupByUserID   int64
	CreatedAt       time.Time
}

func (g *GroupConfig) Pending() bool {
	return g.APIKeySecretRef == nil
}

func (g *GroupConfig) CanSummarize() bool {
	return g.Enabled && !g.Pending()
}

// GroupSettings is one-to-one with GroupConfig, created lazily with defaults
// the first time it is read.
type GroupSettings struct {
	ChatID             int64
	SummaryStyle       SummaryStyle
	CustomPrompt       string
	ExcludeBotMessages bool
	ExcludeCommands    bool
	ExcludedUserIDs    []int64
	ScheduleEnabled    bool
	ScheduleFrequency  ScheduleFrequency
	ScheduleTime       string // "HH:MM", UTC
	LastScheduledRun   *time.Time
}

func DefaultSettings(chatID int64) GroupSettings {
	return GroupSettings{
		ChatID:             chatID,
		SummaryStyle:       StyleDefault,
		ExcludeBotMessages: true,
		ExcludeCommands:    true,
		ScheduleFrequency:  FrequencyDaily,
		ScheduleTime:       "09:00",
	}
}

func (s GroupSettings) IsExcludedUser(userID int64) bool {
	for _, id := range s.ExcludedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
