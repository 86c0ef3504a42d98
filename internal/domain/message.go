package domain

import "time"

// Message is a cached group chat message. Identity is (ChatID, MessageID);
// edits update content and sender fields in place.
type Message struct {
	ChatID      int64
	MessageID   int64
	UserID      *int64
	Username    string
	DisplayName string
	Content     string
	SentAt      time.Time
}

// Summary is a generated recap of messages between PeriodStart and PeriodEnd.
// At most one exists per (ChatID, PeriodStart, PeriodEnd).
type Summary struct {
	ID           int64
	ChatID       int64
	Text         string
	MessageCount int
	PeriodStart  time.Time
	PeriodEnd    time.Time
	CreatedAt    time.Time
}
