package window

import (
	"context"
	"errors"
	"strings"

	"github.com/777genius/claude-notifier/internal/logging"
)

// maxLabelRunes bounds the fallback project label taken from a full title.
const maxLabelRunes = 40

// Open is an editor window listed by Enumerate.
type Open struct {
	Candidate
	EditorID string
	Project  string
}

// Enumerate lists the open windows of every target. Windows whose title does
// not end with the target's application name are ignored. A missing query
// tool aborts the listing; other per-target errors are logged and skipped.
func (l *Locator) Enumerate(ctx context.Context, targets []Target) ([]Open, error) {
	appNames := make([]string, 0, len(targets))
	for _, t := range targets {
		if t.Title != "" {
			appNames = append(appNames, t.Title)
		}
	}

	var open []Open
	for _, t := range targets {
		cands, err := l.Candidates(ctx, t)
		if err != nil {
			if errors.Is(err, ErrToolUnavailable) {
				return nil, err
			}
			logging.Warn("enumerate %s: %v", t.ID, err)
			continue
		}
		for _, c := range cands {
			if t.Title == "" || !hasSuffixFold(c.Title, t.Title) {
				continue
			}
			open = append(open, Open{
				Candidate: c,
				EditorID:  t.ID,
				Project:   ProjectFromTitle(c.Title, appNames),
			})
		}
	}
	return open, nil
}

// ProjectFromTitle extracts the project from titles like
// "index.ts — demo — Cursor": the segment before a trailing application name.
// Titles that do not follow the pattern are returned truncated.
func ProjectFromTitle(title string, appNames []string) string {
	sep := " - "
	if strings.Contains(title, " — ") {
		sep = " — "
	}
	parts := strings.Split(title, sep)
	if len(parts) >= 2 {
		last := strings.TrimSpace(parts[len(parts)-1])
		for _, app := range appNames {
			if strings.EqualFold(last, app) {
				if p := strings.TrimSpace(parts[len(parts)-2]); p != "" {
					return p
				}
				break
			}
		}
	}
	return truncateRunes(strings.TrimSpace(title), maxLabelRunes)
}

func hasSuffixFold(s, suffix string) bool {
	s = strings.TrimSpace(s)
	if len(s) < len(suffix) {
		return false
	}
	return strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
