// ABOUTME: Payload is the verbatim JSON document a hook client submits over the socket.
// ABOUTME: Recognized keys are decoded into Fields; everything else is preserved untouched.
package notification

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Recognized payload keys.
const (
	KeyCwd            = "cwd"
	KeyMessage        = "message"
	KeyType           = "notification_type"
	KeySessionID      = "session_id"
	KeyHookEvent      = "hook_event_name"
	KeyTranscriptPath = "transcript_path"
	KeyTimestamp      = "timestamp"
)

// Payload is an arbitrary JSON object received from a client.
type Payload map[string]interface{}

// Fields holds the recognized keys of a Payload.
type Fields struct {
	Cwd            string `mapstructure:"cwd"`
	Message        string `mapstructure:"message"`
	Type           string `mapstructure:"notification_type"`
	SessionID      string `mapstructure:"session_id"`
	HookEvent      string `mapstructure:"hook_event_name"`
	TranscriptPath string `mapstructure:"transcript_path"`
	Timestamp      string `mapstructure:"timestamp"`
}

// DecodePayload parses a JSON object. Anything other than an object is an error.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("invalid payload: not a JSON object")
	}
	return p, nil
}

// Fields extracts the recognized keys. Scalars of the wrong type are coerced to
// strings; values that cannot be coerced (objects, arrays) are left empty.
func (p Payload) Fields() Fields {
	var f Fields
	for _, key := range []string{KeyCwd, KeyMessage, KeyType, KeySessionID, KeyHookEvent, KeyTranscriptPath, KeyTimestamp} {
		v, ok := p[key]
		if !ok || v == nil {
			continue
		}
		single := map[string]interface{}{key: v}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &f,
		})
		if err != nil {
			continue
		}
		// A failed key leaves only that field empty.
		_ = dec.Decode(single)
	}
	return f
}

// String returns the value of key as a string, or "" when absent.
func (p Payload) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// Extra returns the keys the core does not interpret, for display/debugging.
func (p Payload) Extra() map[string]interface{} {
	known := map[string]bool{
		KeyCwd: true, KeyMessage: true, KeyType: true, KeySessionID: true,
		KeyHookEvent: true, KeyTranscriptPath: true, KeyTimestamp: true,
	}
	extra := make(map[string]interface{})
	for k, v := range p {
		if !known[k] {
			extra[k] = v
		}
	}
	return extra
}

// parseTimestamp accepts RFC3339 (with or without fractional seconds) or unix seconds.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil && secs > 0 {
		whole := int64(secs)
		nanos := int64((secs - float64(whole)) * 1e9)
		return time.Unix(whole, nanos), true
	}
	return time.Time{}, false
}
