// ABOUTME: Focus policies: how to bring a project's editor to the foreground.
// ABOUTME: Persisted in focus.json as a project-keyed mapping with a default and built-in editors.
package focus

import (
	"errors"
	"fmt"
	"sort"

	"github.com/777genius/claude-notifier/internal/window"
)

// Kind selects the focus strategy.
type Kind string

const (
	KindBuiltin Kind = "builtin"
	KindCustom  Kind = "custom"
)

var (
	// ErrUnknownEditor means a builtin policy names an editor missing from builtin_editors.
	ErrUnknownEditor = errors.New("unknown editor")
	// ErrCommandFailed means a custom focus command exited non-zero.
	ErrCommandFailed = errors.New("focus command failed")
	// ErrCommandTimeout means a custom focus command exceeded its time limit.
	ErrCommandTimeout = errors.New("focus command timed out")
)

// Policy is either {kind: builtin, editor_id} or {kind: custom, command, pass_payload}.
type Policy struct {
	Kind        Kind   `json:"kind" jsonschema:"enum=builtin,enum=custom"`
	EditorID    string `json:"editor_id,omitempty" jsonschema:"description=Key into builtin_editors (builtin policies)"`
	Command     string `json:"command,omitempty" jsonschema:"description=Shell command run with sh -c (custom policies)"`
	PassPayload bool   `json:"pass_payload,omitempty" jsonschema:"description=Pipe the notification context as JSON to the command's stdin"`
}

// Validate checks that the fields required by the kind are set.
func (p Policy) Validate() error {
	switch p.Kind {
	case KindBuiltin:
		if p.EditorID == "" {
			return fmt.Errorf("builtin policy requires editor_id")
		}
	case KindCustom:
		if p.Command == "" {
			return fmt.Errorf("custom policy requires command")
		}
	default:
		return fmt.Errorf("unknown policy kind %q", p.Kind)
	}
	return nil
}

func (p Policy) String() string {
	if p.Kind == KindCustom {
		return "custom(" + p.Command + ")"
	}
	return "builtin(" + p.EditorID + ")"
}

// Editor describes how a built-in editor's windows are found.
type Editor struct {
	WindowTitle string `json:"window_title" jsonschema:"description=Application name; title search fallback and title suffix"`
	WindowClass string `json:"window_class" jsonschema:"description=X11 WM_CLASS searched first"`
}

// Target converts the editor into a window search target.
func (e Editor) Target(id string) window.Target {
	return window.Target{ID: id, Class: e.WindowClass, Title: e.WindowTitle}
}

// Mapping is the persisted focus.json document.
type Mapping struct {
	Projects       map[string]Policy `json:"projects"`
	Default        Policy            `json:"default"`
	BuiltinEditors map[string]Editor `json:"builtin_editors"`
}

// DefaultEditorID is the editor used by the initial default policy.
const DefaultEditorID = "cursor"

// DefaultEditors are written to a fresh focus.json.
func DefaultEditors() map[string]Editor {
	return map[string]Editor{
		"cursor":   {WindowTitle: "Cursor", WindowClass: "Cursor"},
		"vscode":   {WindowTitle: "Visual Studio Code", WindowClass: "Code"},
		"windsurf": {WindowTitle: "Windsurf", WindowClass: "Windsurf"},
		"zed":      {WindowTitle: "Zed", WindowClass: "dev.zed.Zed"},
	}
}

// DefaultPolicy is the initial global default.
func DefaultPolicy() Policy {
	return Policy{Kind: KindBuiltin, EditorID: DefaultEditorID}
}

// DefaultMapping returns the document created on first run.
func DefaultMapping() *Mapping {
	return &Mapping{
		Projects:       map[string]Policy{},
		Default:        DefaultPolicy(),
		BuiltinEditors: DefaultEditors(),
	}
}

// applyDefaults fills sections missing from a hand-edited file.
func (m *Mapping) applyDefaults() {
	if m.Projects == nil {
		m.Projects = map[string]Policy{}
	}
	if m.Default.Kind == "" {
		m.Default = DefaultPolicy()
	}
	if len(m.BuiltinEditors) == 0 {
		m.BuiltinEditors = DefaultEditors()
	}
}

// Targets returns every built-in editor as a search target, sorted by id.
func (m *Mapping) Targets() []window.Target {
	ids := make([]string, 0, len(m.BuiltinEditors))
	for id := range m.BuiltinEditors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	targets := make([]window.Target, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, m.BuiltinEditors[id].Target(id))
	}
	return targets
}
