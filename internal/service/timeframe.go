package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/recapbot/recapbot/internal/config"
)

type SelectionKind int

const (
	// SelectCount picks the last N cached messages.
	SelectCount SelectionKind = iota
	// SelectSince picks messages sent after a cutoff instant.
	SelectSince
)

// Selection is a resolved message window. For SelectSince, Hours carries the
// resolved duration and Since the absolute cutoff.
type Selection struct {
	Kind  SelectionKind
	Count int
	Hours int
	Since time.Time
}

var (
	countRe   = regexp.MustCompile(`^\d+$`)
	compactRe = regexp.MustCompile(`^(\d+)([hd])$`)
	spacedRe  = regexp.MustCompile(`^(\d+)\s+(hours?|days?|weeks?)$`)
)

// ParseSelection turns free-form user input into a selection window. It is
// total: out-of-grammar input falls back to the last hour, never an error.
func ParseSelection(text string, now time.Time) Selection {
	text = strings.ToLower(strings.TrimSpace(text))

	// A bare integer is a count, including "0" (which falls to the default).
	if countRe.MatchString(text) {
		n, err := strconv.Atoi(text)
		if err != nil || n == 0 {
			n = config.DefaultMessageCount
		}
		if n > config.MaxMessageCount {
			n = config.MaxMessageCount
		}
		return Selection{Kind: SelectCount, Count: n}
	}

	hours := parseHours(text)
	return Selection{
		Kind:  SelectSince,
		Hours: hours,
		Since: now.Add(-time.Duration(hours) * time.Hour),
	}
}

func parseHours(text string) int {
	if m := compactRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return 1
		}
		switch m[2] {
		case "h":
			return min(n, config.MaxTimeframeHours)
		case "d":
			return min(n, config.MaxTimeframeDays) * 24
		}
	}

	if m := spacedRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return 1
		}
		switch {
		case strings.HasPrefix(m[2], "hour"):
			return min(n, config.MaxTimeframeHours)
		case strings.HasPrefix(m[2], "day"):
			return min(n, config.MaxTimeframeDays) * 24
		case strings.HasPrefix(m[2], "week"):
			return min(n, config.MaxTimeframeWeeks) * 168
		}
	}

	switch text {
	case "day":
		return 24
	case "week":
		return 168
	}

	// Unparseable input defaults to the last hour.
	return 1
}
