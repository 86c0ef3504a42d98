package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/recapbot/recapbot/internal/config"
	"github.com/recapbot/recapbot/internal/domain"
)

// MessageRepo is the message and summary store as the scheduler sees it.
type MessageRepo interface {
	Since(ctx context.Context, chatID int64, since time.Time, limit int) ([]domain.Message, error)
	Stale(ctx context.Context, maxAge time.Duration) ([]domain.Message, error)
	DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
	InsertSummary(ctx context.Context, s domain.Summary) error
	DeleteSummariesOlderThan(ctx context.Context, days int) (int64, error)
}

// GroupStore is the per-chat configuration store as the scheduler sees it.
type GroupStore interface {
	Get(ctx context.Context, chatID int64) (*domain.GroupConfig, error)
	GetSettings(ctx context.Context, chatID int64) (domain.GroupSettings, error)
	List(ctx context.Context) ([]domain.GroupConfig, error)
	ListScheduled(ctx context.Context) ([]domain.GroupSettings, error)
	RecordScheduledRun(ctx context.Context, chatID int64, at time.Time) error
	Delete(ctx context.Context, chatID int64) error
}

// SecretCodec reveals a sealed credential by reference.
type SecretCodec interface {
	Reveal(ctx context.Context, ref uuid.UUID) (string, error)
}

// ChunkSummarizer is the summarization pipeline entry point.
type ChunkSummarizer interface {
	Summarize(ctx context.Context, apiKey string, msgs []domain.Message, set domain.GroupSettings) (string, error)
}

// SummarySender delivers a rendered summary to a chat.
type SummarySender interface {
	SendSummary(ctx context.Context, chatID int64, text string) error
}

// Membership reports whether the bot is still a member of a chat. A nil
// error with false means definitively removed; an indeterminate lookup
// returns domain.ErrMembershipIndeterminate.
type Membership interface {
	IsStillMember(ctx context.Context, chatID int64) (bool, error)
}

// Scheduler runs the unattended lifecycle loops: cache eviction with
// pre-deletion summarization, summary retention pruning, scheduled per-group
// summaries and orphaned-configuration cleanup. Each loop has its own ticker
// and failure boundary; no loop's failure blocks another's next tick.
type Scheduler struct {
	repo       MessageRepo
	groups     GroupStore
	secrets    SecretCodec
	summarizer ChunkSummarizer
	sender     SummarySender
	membership Membership

	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(repo MessageRepo, groups GroupStore, secrets SecretCodec, summarizer ChunkSummarizer, sender SummarySender, membership Membership) *Scheduler {
	return &Scheduler{
		repo:       repo,
		groups:     groups,
		secrets:    secrets,
		summarizer: summarizer,
		sender:     sender,
		membership: membership,
		now:        time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(4)
	go s.loop("eviction", config.EvictionInterval, 0, s.runEviction)
	go s.loop("summary_prune", config.SummaryPruneInterval, 0, s.runSummaryPrune)
	go s.loop("scheduled_summaries", config.ScheduleInterval, config.InitialCheckDelay, s.runScheduledSummaries)
	go s.loop("orphan_cleanup", config.OrphanCheckInterval, config.InitialCheckDelay, s.runOrphanCleanup)

	slog.Info("scheduler started")
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	slog.Info("scheduler stopped")
}

func (s *Scheduler) loop(name string, interval, initialDelay time.Duration, run func(context.Context)) {
	defer s.wg.Done()

	if initialDelay > 0 {
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(initialDelay):
			s.safely(name, run)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.safely(name, run)
		}
	}
}

// safely keeps a panicking tick from taking down the loop or the process.
func (s *Scheduler) safely(name string, run func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in scheduler loop", "loop", name, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	run(s.ctx)
}

// runEviction summarizes messages past the retention age per chat, persists
// the summaries, then deletes all stale messages. Deletion is a hard privacy
// bound: it proceeds even when summarization failed for some or all chats.
func (s *Scheduler) runEviction(ctx context.Context) {
	stale, err := s.repo.Stale(ctx, config.MessageRetention)
	if err != nil {
		slog.Error("fetch stale messages", "error", err)
	}

	for chatID, msgs := range groupByChat(stale) {
		if err := s.archiveChat(ctx, chatID, msgs); err != nil {
			slog.Error("archive stale messages", "error", err, "chat_id", chatID, "messages", len(msgs))
		}
	}

	deleted, err := s.repo.DeleteOlderThan(ctx, config.MessageRetention)
	if err != nil {
		slog.Error("delete stale messages", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("stale messages deleted", "count", deleted)
	}
}

func (s *Scheduler) archiveChat(ctx context.Context, chatID int64, msgs []domain.Message) error {
	cfg, err := s.groups.Get(ctx, chatID)
	if err != nil {
		return err
	}
	if !cfg.CanSummarize() {
		slog.Debug("skipping archival for inactive group", "chat_id", chatID, "pending", cfg.Pending(), "enabled", cfg.Enabled)
		return nil
	}

	apiKey, err := s.secrets.Reveal(ctx, *cfg.APIKeySecretRef)
	if err != nil {
		return fmt.Errorf("reveal credential: %w", err)
	}

	// Archival summaries capture everything before deletion, so the group's
	// filter settings are deliberately not applied; only the style is.
	set, err := s.groups.GetSettings(ctx, chatID)
	if err != nil {
		set = domain.DefaultSettings(chatID)
	}

	text, err := s.summarizer.Summarize(ctx, apiKey, msgs, set)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	return s.repo.InsertSummary(ctx, domain.Summary{
		ChatID:       chatID,
		Text:         text,
		MessageCount: len(msgs),
		PeriodStart:  msgs[0].SentAt,
		PeriodEnd:    msgs[len(msgs)-1].SentAt,
	})
}

func (s *Scheduler) runSummaryPrune(ctx context.Context) {
	deleted, err := s.repo.DeleteSummariesOlderThan(ctx, config.SummaryRetentionDays)
	if err != nil {
		slog.Error("prune summaries", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("old summaries pruned", "count", deleted)
	}
}

func (s *Scheduler) runScheduledSummaries(ctx context.Context) {
	now := s.now().UTC()

	scheduled, err := s.groups.ListScheduled(ctx)
	if err != nil {
		slog.Error("list scheduled groups", "error", err)
		return
	}

	for _, set := range scheduled {
		if !scheduleDue(set, now) {
			continue
		}
		if err := s.runScheduledSummary(ctx, set, now); err != nil {
			slog.Error("scheduled summary", "error", err, "chat_id", set.ChatID)
		}
	}
}

func (s *Scheduler) runScheduledSummary(ctx context.Context, set domain.GroupSettings, now time.Time) error {
	cfg, err := s.groups.Get(ctx, set.ChatID)
	if err != nil {
		return err
	}
	if !cfg.CanSummarize() {
		return nil
	}

	window := 24 * time.Hour
	if set.ScheduleFrequency == domain.FrequencyWeekly {
		window = 168 * time.Hour
	}

	msgs, err := s.repo.Since(ctx, set.ChatID, now.Add(-window), config.MaxMessageCount)
	if err != nil {
		return fmt.Errorf("fetch messages: %w", err)
	}
	msgs = FilterMessages(msgs, set)

	if len(msgs) == 0 {
		// Nothing to deliver, but record the run so the next hourly ticks
		// inside the same day do not retry.
		slog.Info("scheduled summary skipped, no eligible messages", "chat_id", set.ChatID)
		return s.groups.RecordScheduledRun(ctx, set.ChatID, now)
	}

	apiKey, err := s.secrets.Reveal(ctx, *cfg.APIKeySecretRef)
	if err != nil {
		return fmt.Errorf("reveal credential: %w", err)
	}

	text, err := s.summarizer.Summarize(ctx, apiKey, msgs, set)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	header := fmt.Sprintf("🗞 *Daily digest* (%d messages)\n\n", len(msgs))
	if set.ScheduleFrequency == domain.FrequencyWeekly {
		header = fmt.Sprintf("🗞 *Weekly digest* (%d messages)\n\n", len(msgs))
	}
	if err := s.sender.SendSummary(ctx, set.ChatID, header+text); err != nil {
		return fmt.Errorf("deliver summary: %w", err)
	}

	return s.groups.RecordScheduledRun(ctx, set.ChatID, now)
}

// scheduleDue reports whether a group's scheduled summary should fire at the
// given instant: UTC hour match (the hourly tick is the tolerance window),
// the weekly day constraint, and a drift-tolerant once-per-day guard.
func scheduleDue(set domain.GroupSettings, now time.Time) bool {
	if set.LastScheduledRun != nil && now.Sub(*set.LastScheduledRun) < config.ScheduledRunGuard {
		return false
	}
	if set.ScheduleFrequency == domain.FrequencyWeekly && now.Weekday() != config.WeeklyDigestWeekday {
		return false
	}

	parts := strings.SplitN(set.ScheduleTime, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	return now.Hour() == hour
}

func (s *Scheduler) runOrphanCleanup(ctx context.Context) {
	cfgs, err := s.groups.List(ctx)
	if err != nil {
		slog.Error("list groups", "error", err)
		return
	}

	for _, cfg := range cfgs {
		member, err := s.membership.IsStillMember(ctx, cfg.ChatID)
		if err != nil {
			slog.Warn("membership check indeterminate", "error", err, "chat_id", cfg.ChatID)
			continue
		}
		if member {
			continue
		}
		if err := s.groups.Delete(ctx, cfg.ChatID); err != nil {
			slog.Error("delete orphaned group", "error", err, "chat_id", cfg.ChatID)
			continue
		}
		slog.Info("orphaned group removed", "chat_id", cfg.ChatID)
	}
}

func groupByChat(msgs []domain.Message) map[int64][]domain.Message {
	byChat := make(map[int64][]domain.Message)
	for _, m := range msgs {
		byChat[m.ChatID] = append(byChat[m.ChatID], m)
	}
	return byChat
}
