package notification

import "strings"

// Urgency is the presentation priority of a notification.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Known type tags sent by Claude Code's Notification hook.
const (
	TypePermissionPrompt = "permission_prompt"
	TypeIdlePrompt       = "idle_prompt"
	TypeAuthSuccess      = "auth_success"
)

// Freedesktop sound theme names used by the classifications.
const (
	SoundWarning  = "dialog-warning"
	SoundQuestion = "dialog-question"
	SoundComplete = "complete"
	SoundError    = "dialog-error"
	SoundMessage  = "message-new-instant"
)

// Classification is the deterministic outcome of Classify.
type Classification struct {
	Urgency Urgency
	Icon    string
	Label   string
	Sound   string
}

var (
	permission = Classification{UrgencyCritical, "🔐", "Permission", SoundWarning}
	waiting    = Classification{UrgencyCritical, "⏸️", "Waiting", SoundQuestion}
	authOK     = Classification{UrgencyNormal, "✅", "Auth Success", SoundComplete}
	failure    = Classification{UrgencyCritical, "❌", "Error", SoundError}
	generic    = Classification{UrgencyNormal, "🔔", "Notification", SoundMessage}
)

var typeTags = map[string]Classification{
	TypePermissionPrompt: permission,
	TypeIdlePrompt:       waiting,
	TypeAuthSuccess:      authOK,
}

// eventIcons is checked in order; the first substring hit picks the icon.
var eventIcons = []struct {
	needles []string
	icon    string
}{
	{[]string{"notification"}, "🔔"},
	{[]string{"start", "begin"}, "▶️"},
	{[]string{"stop", "end"}, "⏹️"},
	{[]string{"pause"}, "⏸️"},
	{[]string{"resume"}, "⏯️"},
}

// Classify maps (type tag, message, hook event name) to urgency, icon, label and sound.
// First match wins:
//  1. known type tag
//  2. "waiting for your input" in the message
//  3. error/failed/exception in the message
//  4. permission/approve in the message
//  5. hook event name present (PermissionRequest is critical, others normal)
//  6. generic notification
func Classify(typeTag, message, event string) Classification {
	if c, ok := typeTags[typeTag]; ok {
		return c
	}

	msg := strings.ToLower(message)
	if strings.Contains(msg, "waiting for your input") {
		return waiting
	}
	if containsAny(msg, "error", "failed", "exception") {
		return failure
	}
	if containsAny(msg, "permission", "approve") {
		return permission
	}

	if event != "" {
		return classifyEvent(event)
	}
	return generic
}

func classifyEvent(event string) Classification {
	lower := strings.ToLower(event)
	if strings.Contains(lower, "permissionrequest") {
		return Classification{UrgencyCritical, "🔓", event, SoundWarning}
	}

	icon := "💬"
	for _, e := range eventIcons {
		if containsAny(lower, e.needles...) {
			icon = e.icon
			break
		}
	}
	return Classification{UrgencyNormal, icon, event, SoundMessage}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
