package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/recapbot/recapbot/internal/domain"
)

// Messages is the cached-message and summary store.
type Messages struct {
	db *pgxpool.Pool
}

func NewMessages(db *pgxpool.Pool) *Messages {
	return &Messages{db: db}
}

// Upsert caches a message. Re-delivery of an edited message updates content
// and sender fields but keeps the (chat_id, message_id) identity.
func (r *Messages) Upsert(ctx context.Context, m domain.Message) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO messages (chat_id, message_id, user_id, username, display_name, content, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chat_id, message_id) DO UPDATE
		SET content = EXCLUDED.content,
		    username = EXCLUDED.username,
		    display_name = EXCLUDED.display_name`,
		m.ChatID, m.MessageID, m.UserID, m.Username, m.DisplayName, m.Content, m.SentAt,
	)
	if err != nil {
		return fmt.Errorf("upsert message: %w", err)
	}
	return nil
}

// Since returns up to limit messages of a chat sent at or after the cutoff,
// in chronological order.
func (r *Messages) Since(ctx context.Context, chatID int64, since time.Time, limit int) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT chat_id, message_id, user_id, username, display_name, content, sent_at
		FROM messages
		WHERE chat_id = $1 AND sent_at >= $2
		ORDER BY sent_at, message_id
		LIMIT $3`,
		chatID, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select messages since: %w", err)
	}
	return scanMessages(rows)
}

// FromID returns up to limit messages of a chat with message_id greater than
// sinceMessageID, in chronological order.
func (r *Messages) FromID(ctx context.Context, chatID, sinceMessageID int64, limit int) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT chat_id, message_id, user_id, username, display_name, content, sent_at
		FROM messages
		WHERE chat_id = $1 AND message_id > $2
		ORDER BY message_id
		LIMIT $3`,
		chatID, sinceMessageID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select messages from id: %w", err)
	}
	return scanMessages(rows)
}

// LastN returns the n most recent messages of a chat in chronological order.
func (r *Messages) LastN(ctx context.Context, chatID int64, n int) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT chat_id, message_id, user_id, username, display_name, content, sent_at
		FROM (
			SELECT chat_id, message_id, user_id, username, display_name, content, sent_at
			FROM messages
			WHERE chat_id = $1
			ORDER BY sent_at DESC, message_id DESC
			LIMIT $2
		) recent
		ORDER BY sent_at, message_id`,
		chatID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("select last messages: %w", err)
	}
	return scanMessages(rows)
}

// Stale returns all messages older than maxAge across every chat, ordered by
// chat then time so callers can group them per chat.
func (r *Messages) Stale(ctx context.Context, maxAge time.Duration) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT chat_id, message_id, user_id, username, display_name, content, sent_at
		FROM messages
		WHERE sent_at < now() - $1::interval
		ORDER BY chat_id, sent_at, message_id`,
		maxAge.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("select stale messages: %w", err)
	}
	return scanMessages(rows)
}

// DeleteOlderThan removes every message older than maxAge and returns the
// number of rows deleted.
func (r *Messages) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM messages WHERE sent_at < now() - $1::interval`,
		maxAge.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertSummary persists a summary. Duplicate generation for the same
// (chat_id, period_start, period_end) is a no-op.
func (r *Messages) InsertSummary(ctx context.Context, s domain.Summary) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO summaries (chat_id, text, message_count, period_start, period_end)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (chat_id, period_start, period_end) DO NOTHING`,
		s.ChatID, s.Text, s.MessageCount, s.PeriodStart, s.PeriodEnd,
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// DeleteSummariesOlderThan removes summaries created more than the given
// number of days ago and returns the number of rows deleted.
func (r *Messages) DeleteSummariesOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM summaries WHERE created_at < now() - make_interval(days => $1)`,
		days,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old summaries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanMessages(rows pgx.Rows) ([]domain.Message, error) {
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ChatID, &m.MessageID, &m.UserID, &m.Username, &m.DisplayName, &m.Content, &m.SentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}
