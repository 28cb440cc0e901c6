// ABOUTME: Notification is the normalized record derived from one Payload.
// ABOUTME: Normalizer resolves the project, classifies urgency and composes the display body.
package notification

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/777genius/claude-notifier/internal/platform"
	"github.com/777genius/claude-notifier/internal/sessionname"
	"github.com/777genius/claude-notifier/pkg/jsonl"
)

// AppTitle prefixes every notification title.
const AppTitle = "Claude Code"

// DefaultMessage is shown when neither the payload nor the transcript carry text.
const DefaultMessage = "Task completed"

// summaryRunes bounds transcript text used as a body fallback.
const summaryRunes = 200

// Notification is immutable once built.
type Notification struct {
	ID string
	Classification

	Project string
	// ContextPath is the project directory matched from the transcript, else
	// cwd. Focus lookup tries Cwd before it.
	ContextPath string

	Message        string
	Body           string
	Cwd            string
	SessionID      string
	TranscriptPath string
	HookEvent      string
	Type           string
	Branch         string
	Timestamp      time.Time

	Payload Payload
}

// Title renders "<icon> Claude Code - <label>".
func (n *Notification) Title() string {
	return n.Icon + " " + AppTitle + " - " + n.Label
}

// IsCritical reports whether the notification should stay until dismissed.
func (n *Notification) IsCritical() bool {
	return n.Urgency == UrgencyCritical
}

// Normalizer builds Notifications. The zero value performs no I/O and uses
// the wall clock.
type Normalizer struct {
	Now     func() time.Time
	Branch  func(cwd string) string
	Summary func(transcriptPath string) string
}

// NewNormalizer returns a Normalizer that looks up the git branch of cwd and
// falls back to the transcript's last assistant text for empty messages.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Now:    time.Now,
		Branch: platform.GetGitBranch,
		Summary: func(path string) string {
			return jsonl.Summary(path, summaryRunes)
		},
	}
}

// Normalize is shorthand for a zero Normalizer with a fixed clock.
func Normalize(p Payload, now time.Time) *Notification {
	nz := Normalizer{Now: func() time.Time { return now }}
	return nz.Normalize(p)
}

// Normalize derives a Notification from p.
func (nz *Normalizer) Normalize(p Payload) *Notification {
	f := p.Fields()

	n := &Notification{
		ID:             uuid.NewString(),
		Classification: Classify(f.Type, f.Message, f.HookEvent),
		Project:        ResolveProjectName(f.Cwd, f.TranscriptPath),
		ContextPath:    contextPath(f.Cwd, f.TranscriptPath),
		Message:        strings.TrimSpace(f.Message),
		Cwd:            f.Cwd,
		SessionID:      f.SessionID,
		TranscriptPath: f.TranscriptPath,
		HookEvent:      f.HookEvent,
		Type:           f.Type,
		Payload:        p,
	}

	if ts, ok := parseTimestamp(f.Timestamp); ok {
		n.Timestamp = ts
	} else if nz.Now != nil {
		n.Timestamp = nz.Now()
	} else {
		n.Timestamp = time.Now()
	}

	if n.Message == "" && nz.Summary != nil && f.TranscriptPath != "" {
		n.Message = nz.Summary(f.TranscriptPath)
	}
	if n.Message == "" {
		n.Message = DefaultMessage
	}
	if nz.Branch != nil && f.Cwd != "" {
		n.Branch = nz.Branch(f.Cwd)
	}

	n.Body = n.composeBody()
	return n
}

func (n *Notification) composeBody() string {
	var b strings.Builder
	b.WriteString("Project: " + n.Project + "\n")
	if label := sessionname.Label(n.SessionID); label != "" {
		b.WriteString("Session: " + label + "\n")
	}
	if n.Branch != "" {
		b.WriteString("Branch: " + n.Branch + "\n")
	}
	b.WriteString("Time: " + n.Timestamp.Local().Format("15:04:05") + "\n")
	if n.Cwd != "" {
		b.WriteString("Dir: " + n.Cwd + "\n")
	}
	b.WriteString("\n")
	b.WriteString(n.Message)
	return b.String()
}

func contextPath(cwd, transcriptPath string) string {
	if dir := ProjectDir(cwd, transcriptPath); dir != "" {
		return dir
	}
	if cwd == "" {
		return ""
	}
	return filepath.Clean(cwd)
}
