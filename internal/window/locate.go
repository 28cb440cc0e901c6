package window

import (
	"context"
	"strings"
	"time"

	"github.com/777genius/claude-notifier/internal/logging"
)

// Default bounds on external query calls.
const (
	DefaultSearchTimeout = 2 * time.Second
	DefaultTitleTimeout  = time.Second
)

// Locator finds the on-screen window for a Target.
type Locator struct {
	Query         Query
	SearchTimeout time.Duration
	TitleTimeout  time.Duration
}

// NewLocator returns a Locator with the default timeouts.
func NewLocator(q Query) *Locator {
	return &Locator{Query: q, SearchTimeout: DefaultSearchTimeout, TitleTimeout: DefaultTitleTimeout}
}

// Locate picks the window for t. With a non-empty projectHint the first
// candidate whose title contains it (case-insensitive) wins, otherwise the
// first candidate in query order. ErrNoWindow is returned when no real editor
// window exists.
func (l *Locator) Locate(ctx context.Context, t Target, projectHint string) (Candidate, error) {
	cands, err := l.Candidates(ctx, t)
	if err != nil {
		return Candidate{}, err
	}
	if len(cands) == 0 {
		return Candidate{}, ErrNoWindow
	}

	if hint := strings.ToLower(strings.TrimSpace(projectHint)); hint != "" {
		for _, c := range cands {
			if strings.Contains(strings.ToLower(c.Title), hint) {
				logging.Debug("locate %s: %s %q matches project %q", t.ID, c.Handle, c.Title, projectHint)
				return c, nil
			}
		}
	}
	logging.Debug("locate %s: using first candidate %s %q", t.ID, cands[0].Handle, cands[0].Title)
	return cands[0], nil
}

// Candidates returns t's windows in query order, helper windows removed.
func (l *Locator) Candidates(ctx context.Context, t Target) ([]Candidate, error) {
	handles, err := l.search(ctx, t)
	if err != nil {
		return nil, err
	}

	var cands []Candidate
	for _, h := range handles {
		title, err := l.title(ctx, h)
		if err != nil {
			logging.Debug("skip window %s: %v", h, err)
			continue
		}
		if isHelperWindow(title, t) {
			continue
		}
		cands = append(cands, Candidate{Handle: h, Title: title})
	}
	return cands, nil
}

func (l *Locator) search(ctx context.Context, t Target) ([]Handle, error) {
	sctx, cancel := context.WithTimeout(ctx, l.searchTimeout())
	defer cancel()

	handles, err := l.Query.SearchClass(sctx, t.Class)
	if err != nil {
		return nil, err
	}
	if len(handles) > 0 {
		return handles, nil
	}

	nctx, cancel2 := context.WithTimeout(ctx, l.searchTimeout())
	defer cancel2()
	return l.Query.SearchName(nctx, t.Title)
}

func (l *Locator) title(ctx context.Context, h Handle) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, l.titleTimeout())
	defer cancel()
	return l.Query.Title(tctx, h)
}

func (l *Locator) searchTimeout() time.Duration {
	if l.SearchTimeout > 0 {
		return l.SearchTimeout
	}
	return DefaultSearchTimeout
}

func (l *Locator) titleTimeout() time.Duration {
	if l.TitleTimeout > 0 {
		return l.TitleTimeout
	}
	return DefaultTitleTimeout
}

// isHelperWindow reports windows without project context: untitled ones and
// those titled with the bare editor id or class (devtools, background hosts).
func isHelperWindow(title string, t Target) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return true
	}
	return strings.EqualFold(title, t.ID) || strings.EqualFold(title, t.Class)
}
