// Package jsonl reads Claude Code transcript files (one JSON message per line).
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultTailBytes bounds how much of a transcript is read when only recent
// messages are needed.
const DefaultTailBytes = 256 * 1024

// Message represents a Claude Code transcript message
type Message struct {
	Type      string         `json:"type"`
	Message   MessageContent `json:"message"`
	Timestamp string         `json:"timestamp"`
}

// MessageContent holds either string content (user text) or content blocks
// (assistant messages, tool results).
type MessageContent struct {
	Role          string    `json:"role"`
	Content       []Content `json:"-"`
	ContentString string    `json:"-"`
}

// Content represents a content block in a message
type Content struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
}

// UnmarshalJSON accepts content as a string or an array of blocks.
func (m *MessageContent) UnmarshalJSON(data []byte) error {
	type alias MessageContent
	aux := &struct {
		Content json.RawMessage `json:"content"`
		*alias
	}{
		alias: (*alias)(m),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var str string
	if err := json.Unmarshal(aux.Content, &str); err == nil {
		m.ContentString = str
		return nil
	}

	var arr []Content
	if err := json.Unmarshal(aux.Content, &arr); err == nil {
		m.Content = arr
	}
	// null or unexpected content shapes are ignored
	return nil
}

// Parse parses JSONL from a reader. Invalid lines are skipped.
func Parse(r io.Reader) ([]Message, error) {
	var messages []Message
	scanner := bufio.NewScanner(r)

	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024) // Max 1MB per line

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// ParseTail parses at most the last maxBytes of the file at path. The first
// (possibly partial) line of the window is discarded when the file is larger.
func ParseTail(path string, maxBytes int64) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat transcript: %w", err)
	}

	var r io.Reader = f
	if maxBytes > 0 && info.Size() > maxBytes {
		if _, err := f.Seek(info.Size()-maxBytes, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek transcript: %w", err)
		}
		br := bufio.NewReader(f)
		if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
			return nil, err
		}
		r = br
	}
	return Parse(r)
}

// LastAssistantText returns the text of the most recent assistant message that
// has any, with blocks joined by a space.
func LastAssistantText(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Type != "assistant" {
			continue
		}
		var texts []string
		for _, c := range msg.Message.Content {
			if c.Type == "text" && strings.TrimSpace(c.Text) != "" {
				texts = append(texts, strings.TrimSpace(c.Text))
			}
		}
		if msg.Message.ContentString != "" {
			texts = append(texts, strings.TrimSpace(msg.Message.ContentString))
		}
		if len(texts) > 0 {
			return strings.Join(texts, " ")
		}
	}
	return ""
}

// Summary returns the last assistant text of a transcript, truncated to maxRunes
// with an ellipsis. It returns "" when the transcript cannot be read.
func Summary(path string, maxRunes int) string {
	if path == "" {
		return ""
	}
	messages, err := ParseTail(path, DefaultTailBytes)
	if err != nil {
		return ""
	}
	return Truncate(LastAssistantText(messages), maxRunes)
}

// Truncate shortens s to at most maxRunes runes, replacing the tail with "…".
func Truncate(s string, maxRunes int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if maxRunes <= 0 || len(r) <= maxRunes {
		return s
	}
	if maxRunes == 1 {
		return "…"
	}
	return string(r[:maxRunes-1]) + "…"
}
