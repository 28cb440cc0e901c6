package window

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cursor = Target{ID: "cursor", Class: "Cursor", Title: "Cursor"}

func TestLocatePrefersProjectHint(t *testing.T) {
	q := &fakeQuery{
		byClass: map[string][]Handle{"Cursor": {1, 2, 3}},
		titles: map[Handle]string{
			1: "cursor",
			2: "index.ts — demo — Cursor",
			3: "settings — demo2 — Cursor",
		},
	}

	c, err := NewLocator(q).Locate(context.Background(), cursor, "demo")
	require.NoError(t, err)
	assert.Equal(t, Handle(2), c.Handle)
	assert.Equal(t, "index.ts — demo — Cursor", c.Title)
}

func TestLocate(t *testing.T) {
	titles := map[Handle]string{
		10: "Cursor",
		11: "main.go — api — Cursor",
		12: "README.md — Web — Cursor",
		13: "",
	}

	tests := []struct {
		name    string
		byClass []Handle
		byName  []Handle
		hint    string
		want    Handle
		wantErr error
	}{
		{"no hint takes first real window", []Handle{10, 11, 12}, nil, "", 11, nil},
		{"hint is case-insensitive", []Handle{11, 12}, nil, "web", 12, nil},
		{"unmatched hint takes first", []Handle{11, 12}, nil, "other", 11, nil},
		{"title fallback when class finds nothing", nil, []Handle{12}, "", 12, nil},
		{"only helpers", []Handle{10, 13}, nil, "api", 0, ErrNoWindow},
		{"nothing at all", nil, nil, "api", 0, ErrNoWindow},
		{"vanished window skipped", []Handle{99, 12}, nil, "", 12, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuery{
				byClass: map[string][]Handle{"Cursor": tt.byClass},
				byName:  map[string][]Handle{"Cursor": tt.byName},
				titles:  titles,
			}
			c, err := NewLocator(q).Locate(context.Background(), cursor, tt.hint)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Handle)
		})
	}
}

func TestLocateSearchOrder(t *testing.T) {
	q := &fakeQuery{titles: map[Handle]string{}}
	_, err := NewLocator(q).Locate(context.Background(), cursor, "")
	assert.ErrorIs(t, err, ErrNoWindow)
	assert.Equal(t, []string{"class:Cursor", "name:Cursor"}, q.calls)

	q = &fakeQuery{byClass: map[string][]Handle{"Cursor": {5}}, titles: map[Handle]string{5: "x — Cursor"}}
	_, err = NewLocator(q).Locate(context.Background(), cursor, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"class:Cursor"}, q.calls, "title search only runs when class search is empty")
}

func TestLocateToolUnavailable(t *testing.T) {
	q := &fakeQuery{err: ErrToolUnavailable}
	_, err := NewLocator(q).Locate(context.Background(), cursor, "")
	assert.True(t, errors.Is(err, ErrToolUnavailable))
}

func TestIsHelperWindow(t *testing.T) {
	vscode := Target{ID: "vscode", Class: "Code", Title: "Visual Studio Code"}
	assert.True(t, isHelperWindow("code", vscode))
	assert.True(t, isHelperWindow("VSCODE", vscode))
	assert.True(t, isHelperWindow("  ", vscode))
	assert.False(t, isHelperWindow("Visual Studio Code", vscode))
	assert.False(t, isHelperWindow("main.go - api - Visual Studio Code", vscode))
}
