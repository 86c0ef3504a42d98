package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/recapbot/recapbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator scripts responses per call and records every prompt.
type fakeGenerator struct {
	prompts []string
	respond func(call int, prompt string) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	call := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	return f.respond(call, prompt)
}

func newTestSummarizer(gen Generator) *Summarizer {
	return &Summarizer{gen: gen, retryBase: time.Millisecond}
}

func genMessages(n int) []domain.Message {
	msgs := make([]domain.Message, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range msgs {
		userID := int64(10 + i%5)
		msgs[i] = domain.Message{
			ChatID:      -100,
			MessageID:   int64(i + 1),
			UserID:      &userID,
			Username:    fmt.Sprintf("user%d", i%5),
			DisplayName: fmt.Sprintf("User %d", i%5),
			Content:     fmt.Sprintf("message %d", i+1),
			SentAt:      base.Add(time.Duration(i) * time.Minute),
		}
	}
	return msgs
}

func TestSummarizeEmptyNeverCallsGenerator(t *testing.T) {
	gen := &fakeGenerator{respond: func(int, string) (string, error) {
		t.Fatal("generator must not be called for an empty sequence")
		return "", nil
	}}
	s := newTestSummarizer(gen)

	text, err := s.Summarize(context.Background(), "key", nil, domain.DefaultSettings(-100))
	require.NoError(t, err)
	assert.Equal(t, NothingToSummarize, text)
	assert.Empty(t, gen.prompts)
}

func TestSummarizeSingleChunk(t *testing.T) {
	gen := &fakeGenerator{respond: func(int, string) (string, error) {
		return "a short recap", nil
	}}
	s := newTestSummarizer(gen)

	text, err := s.Summarize(context.Background(), "key", genMessages(1000), domain.DefaultSettings(-100))
	require.NoError(t, err)
	assert.Equal(t, "a short recap", text)
	assert.Len(t, gen.prompts, 1, "at most the threshold goes out in one call")
}

func TestSummarizeEmptyResponseReplacedBySentinel(t *testing.T) {
	gen := &fakeGenerator{respond: func(int, string) (string, error) {
		return "   \n", nil
	}}
	s := newTestSummarizer(gen)

	text, err := s.Summarize(context.Background(), "key", genMessages(3), domain.DefaultSettings(-100))
	require.NoError(t, err)
	assert.Equal(t, EmptyModelResponse, text)
}

func TestSummarizeMultiChunkSplitsAndMerges(t *testing.T) {
	gen := &fakeGenerator{respond: func(call int, prompt string) (string, error) {
		if strings.Contains(prompt, "partial summaries") {
			return "merged summary", nil
		}
		return fmt.Sprintf("chunk summary %d", call+1), nil
	}}
	s := newTestSummarizer(gen)

	text, err := s.Summarize(context.Background(), "key", genMessages(2500), domain.DefaultSettings(-100))
	require.NoError(t, err)
	assert.Equal(t, "merged summary", text)

	// 2500 messages -> 900/900/700, then one merge pass
	require.Len(t, gen.prompts, 4)
	assert.Contains(t, gen.prompts[0], "message 900")
	assert.NotContains(t, gen.prompts[0], "message 901")
	assert.Contains(t, gen.prompts[1], "message 901")
	assert.Contains(t, gen.prompts[1], "message 1800")
	assert.Contains(t, gen.prompts[2], "message 1801")
	assert.Contains(t, gen.prompts[2], "message 2500")
	assert.Contains(t, gen.prompts[3], "Part 1:")
	assert.Contains(t, gen.prompts[3], "Part 3:")
}

func TestSummarizeChunkFailureAborts(t *testing.T) {
	calls := 0
	gen := &fakeGenerator{respond: func(call int, prompt string) (string, error) {
		calls++
		if strings.Contains(prompt, "message 901") {
			return "", fmt.Errorf("%w: boom", domain.ErrQuotaExceeded)
		}
		return "chunk summary", nil
	}}
	s := newTestSummarizer(gen)

	_, err := s.Summarize(context.Background(), "key", genMessages(2500), domain.DefaultSettings(-100))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "chunk 2/3")
	// chunk 1 succeeds once, chunk 2 exhausts its three attempts, chunk 3 never runs
	assert.Equal(t, 4, calls)
}

func TestSummarizeMergeFailureFallsBackToConcatenation(t *testing.T) {
	gen := &fakeGenerator{respond: func(call int, prompt string) (string, error) {
		if strings.Contains(prompt, "partial summaries") {
			return "", errors.New("merge exploded")
		}
		return fmt.Sprintf("part-%d", call+1), nil
	}}
	s := newTestSummarizer(gen)

	text, err := s.Summarize(context.Background(), "key", genMessages(2500), domain.DefaultSettings(-100))
	require.NoError(t, err, "merge failure must degrade, not abort")
	assert.Equal(t, "part-1\n\npart-2\n\npart-3", text)
}

func TestSummarizeRetriesTransientFailures(t *testing.T) {
	attempts := 0
	gen := &fakeGenerator{respond: func(int, string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "finally", nil
	}}
	s := newTestSummarizer(gen)

	text, err := s.Summarize(context.Background(), "key", genMessages(10), domain.DefaultSettings(-100))
	require.NoError(t, err)
	assert.Equal(t, "finally", text)
	assert.Equal(t, 3, attempts)
}

func TestSummarizeCustomPromptPlaceholder(t *testing.T) {
	gen := &fakeGenerator{respond: func(int, string) (string, error) {
		return "done", nil
	}}
	s := newTestSummarizer(gen)

	set := domain.DefaultSettings(-100)
	set.CustomPrompt = "Translate to pirate speak:\n{messages}\nKeep it short."

	_, err := s.Summarize(context.Background(), "key", genMessages(2), set)
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "pirate speak")
	assert.Contains(t, gen.prompts[0], "message 1")
	assert.NotContains(t, gen.prompts[0], "{messages}")
}

func TestStyleInstructions(t *testing.T) {
	tests := []struct {
		style domain.SummaryStyle
		want  string
	}{
		{domain.StyleDefault, "300 words"},
		{domain.StyleDetailed, "500 words"},
		{domain.StyleBrief, "150 words"},
		{domain.StyleBullet, "bulleted"},
		{domain.StyleTimeline, "chronological"},
	}
	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			assert.Contains(t, styleInstruction(tt.style), tt.want)
		})
	}
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		n     int
		sizes []int
	}{
		{1, []int{1}},
		{900, []int{900}},
		{901, []int{900, 1}},
		{2500, []int{900, 900, 700}},
	}
	for _, tt := range tests {
		chunks := splitChunks(genMessages(tt.n), 900)
		require.Len(t, chunks, len(tt.sizes), "n=%d", tt.n)
		next := int64(1)
		for i, c := range chunks {
			assert.Len(t, c, tt.sizes[i])
			// chronological, contiguous
			assert.Equal(t, next, c[0].MessageID)
			next = c[len(c)-1].MessageID + 1
		}
	}
}
