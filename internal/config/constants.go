package config

import "time"

const (
	// Message cache retention
	MessageRetention = 48 * time.Hour

	// Summary retention
	SummaryRetentionDays = 14

	// Scheduler tick intervals
	EvictionInterval     = 12 * time.Hour
	SummaryPruneInterval = 24 * time.Hour
	ScheduleInterval     = 1 * time.Hour
	OrphanCheckInterval  = 24 * time.Hour

	// Delay before the first scheduled-summary and orphan checks after startup
	InitialCheckDelay = 30 * time.Second

	// A scheduled summary never runs twice within this window
	ScheduledRunGuard = 23 * time.Hour

	// Weekly digests go out on this UTC weekday
	WeeklyDigestWeekday = time.Monday

	// Minimum interval between interactive summaries per (chat, caller)
	SummaryCooldown = 30 * time.Second

	// Chunked summarization
	ChunkThreshold = 1000
	ChunkSize      = 900

	// Generation retry policy
	MaxGenerationAttempts = 3
	RetryBaseDelay        = 1 * time.Second

	// Single generation request timeout
	RequestTimeout = 90 * time.Second

	// Count selection bounds
	DefaultMessageCount = 100
	MaxMessageCount     = 10000

	// Timeframe selection bounds
	MaxTimeframeHours = 168
	MaxTimeframeDays  = 7
	MaxTimeframeWeeks = 1
)
