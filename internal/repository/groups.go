package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/recapbot/recapbot/internal/domain"
)

// Groups is the per-chat configuration and settings store.
type Groups struct {
	db *pgxpool.Pool
}

func NewGroups(db *pgxpool.Pool) *Groups {
	return &Groups{db: db}
}

func (r *Groups) Get(ctx context.Context, chatID int64) (*domain.GroupConfig, error) {
	row := r.db.QueryRow(ctx, `
		SELECT chat_id, api_key_secret_ref, enabled, setup_by_user_id, created_at
		FROM groups WHERE chat_id = $1`,
		chatID,
	)
	cfg, err := scanGroupConfig(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return cfg, nil
}

// CreatePending registers a chat in the pending state. Calling it again for
// an already-configured chat is a no-op.
func (r *Groups) CreatePending(ctx context.Context, chatID, byUserID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO groups (chat_id, setup_by_user_id)
		VALUES ($1, $2)
		ON CONFLICT (chat_id) DO NOTHING`,
		chatID, byUserID,
	)
	if err != nil {
		return fmt.Errorf("create pending group: %w", err)
	}
	return nil
}

func (r *Groups) SetCredential(ctx context.Context, chatID int64, ref uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE groups SET api_key_secret_ref = $2 WHERE chat_id = $1`,
		chatID, ref,
	)
	if err != nil {
		return fmt.Errorf("set group credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

// PendingFor returns chat IDs of groups the given user set up that still
// lack a credential.
func (r *Groups) PendingFor(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT chat_id FROM groups
		WHERE setup_by_user_id = $1 AND api_key_secret_ref IS NULL
		ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select pending groups: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending group: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Groups) SetEnabled(ctx context.Context, chatID int64, enabled bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE groups SET enabled = $2 WHERE chat_id = $1`,
		chatID, enabled,
	)
	if err != nil {
		return fmt.Errorf("set group enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

// Delete removes the group config; messages and settings cascade with it.
func (r *Groups) Delete(ctx context.Context, chatID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM groups WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

func (r *Groups) List(ctx context.Context) ([]domain.GroupConfig, error) {
	rows, err := r.db.Query(ctx, `
		SELECT chat_id, api_key_secret_ref, enabled, setup_by_user_id, created_at
		FROM groups ORDER BY chat_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []domain.GroupConfig
	for rows.Next() {
		cfg, err := scanGroupConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, *cfg)
	}
	return out, rows.Err()
}

// GetSettings returns the settings row for a chat, inserting defaults the
// first time it is read.
func (r *Groups) GetSettings(ctx context.Context, chatID int64) (domain.GroupSettings, error) {
	s, err := r.settings(ctx, chatID)
	if err == nil {
		return s, nil
	}
	if err != pgx.ErrNoRows {
		return domain.GroupSettings{}, fmt.Errorf("get settings: %w", err)
	}

	def := domain.DefaultSettings(chatID)
	_, err = r.db.Exec(ctx, `
		INSERT INTO group_settings (chat_id, summary_style, custom_prompt, exclude_bot_messages,
			exclude_commands, excluded_user_ids, schedule_enabled, schedule_frequency, schedule_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (chat_id) DO NOTHING`,
		def.ChatID, def.SummaryStyle, def.CustomPrompt, def.ExcludeBotMessages,
		def.ExcludeCommands, []int64{}, def.ScheduleEnabled, def.ScheduleFrequency, def.ScheduleTime,
	)
	if err != nil {
		return domain.GroupSettings{}, fmt.Errorf("insert default settings: %w", err)
	}
	return def, nil
}

func (r *Groups) SaveSettings(ctx context.Context, s domain.GroupSettings) error {
	excluded := s.ExcludedUserIDs
	if excluded == nil {
		excluded = []int64{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO group_settings (chat_id, summary_style, custom_prompt, exclude_bot_messages,
			exclude_commands, excluded_user_ids, schedule_enabled, schedule_frequency, schedule_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (chat_id) DO UPDATE
		SET summary_style = EXCLUDED.summary_style,
		    custom_prompt = EXCLUDED.custom_prompt,
		    exclude_bot_messages = EXCLUDED.exclude_bot_messages,
		    exclude_commands = EXCLUDED.exclude_commands,
		    excluded_user_ids = EXCLUDED.excluded_user_ids,
		    schedule_enabled = EXCLUDED.schedule_enabled,
		    schedule_frequency = EXCLUDED.schedule_frequency,
		    schedule_time = EXCLUDED.schedule_time`,
		s.ChatID, s.SummaryStyle, s.CustomPrompt, s.ExcludeBotMessages,
		s.ExcludeCommands, excluded, s.ScheduleEnabled, s.ScheduleFrequency, s.ScheduleTime,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ListScheduled returns settings rows for groups with the schedule turned on
// that are enabled and fully set up.
func (r *Groups) ListScheduled(ctx context.Context) ([]domain.GroupSettings, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.chat_id, s.summary_style, s.custom_prompt, s.exclude_bot_messages,
		       s.exclude_commands, s.excluded_user_ids, s.schedule_enabled,
		       s.schedule_frequency, s.schedule_time, s.last_scheduled_run
		FROM group_settings s
		JOIN groups g ON g.chat_id = s.chat_id
		WHERE s.schedule_enabled AND g.enabled AND g.api_key_secret_ref IS NOT NULL
		ORDER BY s.chat_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list scheduled groups: %w", err)
	}
	defer rows.Close()

	var out []domain.GroupSettings
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan settings: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Groups) RecordScheduledRun(ctx context.Context, chatID int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE group_settings SET last_scheduled_run = $2 WHERE chat_id = $1`,
		chatID, at,
	)
	if err != nil {
		return fmt.Errorf("record scheduled run: %w", err)
	}
	return nil
}

func (r *Groups) settings(ctx context.Context, chatID int64) (domain.GroupSettings, error) {
	row := r.db.QueryRow(ctx, `
		SELECT chat_id, summary_style, custom_prompt, exclude_bot_messages,
		       exclude_commands, excluded_user_ids, schedule_enabled,
		       schedule_frequency, schedule_time, last_scheduled_run
		FROM group_settings WHERE chat_id = $1`,
		chatID,
	)
	return scanSettings(row)
}

func scanGroupConfig(row pgx.Row) (*domain.GroupConfig, error) {
	var cfg domain.GroupConfig
	if err := row.Scan(&cfg.ChatID, &cfg.APIKeySecretRef, &cfg.Enabled, &cfg.SetupByUserID, &cfg.CreatedAt); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func scanSettings(row pgx.Row) (domain.GroupSettings, error) {
	var s domain.GroupSettings
	var style, frequency string
	err := row.Scan(&s.ChatID, &style, &s.CustomPrompt, &s.ExcludeBotMessages,
		&s.ExcludeCommands, &s.ExcludedUserIDs, &s.ScheduleEnabled,
		&frequency, &s.ScheduleTime, &s.LastScheduledRun)
	if err != nil {
		return domain.GroupSettings{}, err
	}
	s.SummaryStyle, _ = domain.ParseSummaryStyle(style)
	s.ScheduleFrequency = domain.ScheduleFrequency(frequency)
	return s, nil
}
