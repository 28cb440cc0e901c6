package window

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerate(t *testing.T) {
	vscode := Target{ID: "vscode", Class: "Code", Title: "Visual Studio Code"}
	q := &fakeQuery{
		byClass: map[string][]Handle{
			"Cursor": {1, 2, 3},
			"Code":   {4, 5},
		},
		titles: map[Handle]string{
			1: "cursor",
			2: "index.ts — demo — Cursor",
			3: "Slack | general",
			4: "main.go - api - Visual Studio Code",
			5: "Visual Studio Code",
		},
	}

	open, err := NewLocator(q).Enumerate(context.Background(), []Target{cursor, vscode})
	require.NoError(t, err)
	require.Len(t, open, 3)

	assert.Equal(t, Handle(2), open[0].Handle)
	assert.Equal(t, "cursor", open[0].EditorID)
	assert.Equal(t, "demo", open[0].Project)

	assert.Equal(t, Handle(4), open[1].Handle)
	assert.Equal(t, "api", open[1].Project)

	assert.Equal(t, Handle(5), open[2].Handle)
	assert.Equal(t, "Visual Studio Code", open[2].Project)
}

func TestEnumerateToolUnavailable(t *testing.T) {
	q := &fakeQuery{err: ErrToolUnavailable}
	_, err := NewLocator(q).Enumerate(context.Background(), []Target{cursor})
	assert.ErrorIs(t, err, ErrToolUnavailable)
}

func TestProjectFromTitle(t *testing.T) {
	apps := []string{"Cursor", "Visual Studio Code"}
	long := "a very long window title that does not follow any pattern at all"

	tests := []struct {
		title string
		want  string
	}{
		{"index.ts — demo — Cursor", "demo"},
		{"demo — Cursor", "demo"},
		{"main.go - api - Visual Studio Code", "api"},
		{"main.go - api - visual studio code", "api"},
		{"a - b - Firefox", "a - b - Firefox"},
		{"Cursor", "Cursor"},
		{long, long[:40]},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectFromTitle(tt.title, apps))
		})
	}
}
