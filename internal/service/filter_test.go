package service

import (
	"testing"
	"time"

	"github.com/recapbot/recapbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id int64, userID int64, username, content string) domain.Message {
	return domain.Message{
		ChatID:      -100,
		MessageID:   id,
		UserID:      &userID,
		Username:    username,
		DisplayName: username,
		Content:     content,
		SentAt:      time.Date(2025, 6, 1, 10, 0, int(id), 0, time.UTC),
	}
}

func TestFilterMessages(t *testing.T) {
	msgs := []domain.Message{
		msg(1, 10, "alice", "hello"),
		msg(2, 11, "someBot", "automated reply"),
		msg(3, 10, "alice", "/summary"),
		msg(4, 12, "bob", "hi all"),
		msg(5, 13, "carol", "lunch?"),
	}

	t.Run("no predicates keeps everything", func(t *testing.T) {
		out := FilterMessages(msgs, domain.GroupSettings{})
		assert.Len(t, out, 5)
	})

	t.Run("bot messages dropped", func(t *testing.T) {
		out := FilterMessages(msgs, domain.GroupSettings{ExcludeBotMessages: true})
		require.Len(t, out, 4)
		for _, m := range out {
			assert.NotEqual(t, int64(2), m.MessageID)
		}
	})

	t.Run("commands dropped", func(t *testing.T) {
		out := FilterMessages(msgs, domain.GroupSettings{ExcludeCommands: true})
		require.Len(t, out, 4)
		for _, m := range out {
			assert.NotEqual(t, int64(3), m.MessageID)
		}
	})

	t.Run("excluded users dropped", func(t *testing.T) {
		out := FilterMessages(msgs, domain.GroupSettings{ExcludedUserIDs: []int64{10}})
		require.Len(t, out, 3)
		for _, m := range out {
			assert.NotEqual(t, int64(10), *m.UserID)
		}
	})

	t.Run("all predicates combined", func(t *testing.T) {
		out := FilterMessages(msgs, domain.GroupSettings{
			ExcludeBotMessages: true,
			ExcludeCommands:    true,
			ExcludedUserIDs:    []int64{12},
		})
		require.Len(t, out, 2)
		assert.Equal(t, int64(1), out[0].MessageID)
		assert.Equal(t, int64(5), out[1].MessageID)
	})

	t.Run("empty result is valid", func(t *testing.T) {
		out := FilterMessages(msgs, domain.GroupSettings{
			ExcludedUserIDs: []int64{10, 11, 12, 13},
		})
		assert.Empty(t, out)
	})
}

func TestFilterOrderPreservingAndIdempotent(t *testing.T) {
	msgs := []domain.Message{
		msg(5, 10, "alice", "e"),
		msg(1, 11, "somebot", "a"),
		msg(9, 12, "bob", "/cmd"),
		msg(3, 13, "carol", "c"),
		msg(7, 10, "alice", "g"),
	}
	set := domain.GroupSettings{ExcludeBotMessages: true, ExcludeCommands: true}

	once := FilterMessages(msgs, set)
	twice := FilterMessages(once, set)
	assert.Equal(t, once, twice, "filtering must be idempotent")

	// Order of survivors matches the original order
	require.Len(t, once, 3)
	assert.Equal(t, int64(5), once[0].MessageID)
	assert.Equal(t, int64(3), once[1].MessageID)
	assert.Equal(t, int64(7), once[2].MessageID)
}
