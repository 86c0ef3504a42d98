package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/recapbot/recapbot/internal/config"
	"github.com/recapbot/recapbot/internal/domain"
)

// Fixed result sentinels. Summarizing zero messages never reaches the
// generator; a blank model response is never returned as-is.
const (
	NothingToSummarize = "😴 There is nothing to summarize for this period."
	EmptyModelResponse = "The model returned an empty summary. Try again with a different window."
)

const messagesPlaceholder = "{messages}"

// Summarizer reduces an ordered message sequence to one natural-language
// summary. Sequences above the chunk threshold are split into chronological
// chunks summarized strictly in sequence, then merged in a single extra pass.
type Summarizer struct {
	gen       Generator
	retryBase time.Duration
}

func NewSummarizer(gen Generator) *Summarizer {
	return &Summarizer{gen: gen, retryBase: config.RetryBaseDelay}
}

func (s *Summarizer) Summarize(ctx context.Context, apiKey string, msgs []domain.Message, set domain.GroupSettings) (string, error) {
	if len(msgs) == 0 {
		return NothingToSummarize, nil
	}

	if len(msgs) <= config.ChunkThreshold {
		return s.generateWithRetry(ctx, apiKey, buildPrompt(msgs, set))
	}

	chunks := splitChunks(msgs, config.ChunkSize)
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		// Chunks run strictly in sequence: a failed chunk aborts the whole
		// summarization rather than leaving a silent gap in the merge.
		part, err := s.generateWithRetry(ctx, apiKey, buildPrompt(chunk, set))
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		parts = append(parts, part)
	}

	merged, err := s.generateWithRetry(ctx, apiKey, mergePrompt(parts, set))
	if err != nil {
		// Merge failure degrades to the raw concatenation.
		slog.Warn("merge pass failed, returning concatenated chunk summaries", "error", err, "chunks", len(parts))
		return strings.Join(parts, "\n\n"), nil
	}
	return merged, nil
}

func (s *Summarizer) generateWithRetry(ctx context.Context, apiKey, prompt string) (string, error) {
	var lastErr error
	delay := s.retryBase

	for attempt := 1; attempt <= config.MaxGenerationAttempts; attempt++ {
		text, err := s.gen.Generate(ctx, apiKey, prompt)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return EmptyModelResponse, nil
			}
			return text, nil
		}
		lastErr = err

		if attempt < config.MaxGenerationAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return "", lastErr
}

func splitChunks(msgs []domain.Message, size int) [][]domain.Message {
	var chunks [][]domain.Message
	for len(msgs) > size {
		chunks = append(chunks, msgs[:size])
		msgs = msgs[size:]
	}
	return append(chunks, msgs)
}

func buildPrompt(msgs []domain.Message, set domain.GroupSettings) string {
	transcript := formatTranscript(msgs)

	if set.CustomPrompt != "" {
		if strings.Contains(set.CustomPrompt, messagesPlaceholder) {
			return strings.ReplaceAll(set.CustomPrompt, messagesPlaceholder, transcript)
		}
		return set.CustomPrompt + "\n\nMessages:\n" + transcript
	}

	return styleInstruction(set.SummaryStyle) + "\n\nMessages:\n" + transcript
}

func styleInstruction(style domain.SummaryStyle) string {
	switch style {
	case domain.StyleDetailed:
		return "Summarize the following group chat messages in detail, covering every discussed topic, decisions made and open questions. Keep it under 500 words."
	case domain.StyleBrief:
		return "Summarize the following group chat messages very briefly, only the essentials. Keep it under 150 words."
	case domain.StyleBullet:
		return "Summarize the following group chat messages as a bulleted list, one bullet per topic. Keep it under 300 words."
	case domain.StyleTimeline:
		return "Summarize the following group chat messages as a chronological timeline of what happened. Keep it under 400 words."
	default:
		return "Summarize the following group chat messages, capturing the main topics and conclusions. Keep it under 300 words."
	}
}

func mergePrompt(parts []string, set domain.GroupSettings) string {
	var b strings.Builder
	b.WriteString("The following are partial summaries of consecutive parts of one long group chat conversation, in chronological order. ")
	b.WriteString("Produce a single coherent summary: remove redundancy across parts and preserve the chronological sense.\n")
	if set.CustomPrompt == "" {
		b.WriteString("Follow this style: ")
		b.WriteString(styleInstruction(set.SummaryStyle))
		b.WriteString("\n")
	}
	for i, p := range parts {
		fmt.Fprintf(&b, "\nPart %d:\n%s\n", i+1, p)
	}
	return b.String()
}

func formatTranscript(msgs []domain.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		name := m.DisplayName
		if name == "" {
			name = m.Username
		}
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.SentAt.UTC().Format("2006-01-02 15:04"), name, m.Content)
	}
	return b.String()
}
