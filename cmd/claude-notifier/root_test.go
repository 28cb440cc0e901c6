package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/777genius/claude-notifier/internal/focus"
	"github.com/777genius/claude-notifier/internal/notification"
	"github.com/777genius/claude-notifier/internal/sounds"
)

// isolate points every XDG directory at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_RUNTIME_DIR", dir)
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitCreatesBothFiles(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, "config", "init")
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "config", "claude-notifier", "config.json")
	focusPath := filepath.Join(dir, "config", "claude-notifier", "focus.json")
	assert.Contains(t, out, "Created: "+cfgPath)
	assert.Contains(t, out, "Created: "+focusPath)

	data, err := os.ReadFile(focusPath)
	require.NoError(t, err)
	var m focus.Mapping
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, focus.DefaultPolicy(), m.Default)
	assert.Contains(t, m.BuiltinEditors, "vscode")

	out, err = run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Exists:  "+cfgPath)
	assert.Contains(t, out, "Exists:  "+focusPath)
}

func TestConfigPath(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "config", "claude-notifier", "config.json"))
	assert.Contains(t, out, filepath.Join(dir, "config", "claude-notifier", "focus.json"))
	assert.Contains(t, out, filepath.Join(dir, "state", "claude-notifier", "daemon.log"))
}

func TestConfigPath_InvalidConfigIsAnError(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0600))

	_, err := run(t, "--config", bad, "config", "path")
	assert.Error(t, err)
}

func TestConfigSchema(t *testing.T) {
	isolate(t)

	tests := []struct {
		args []string
		want []string
	}{
		{args: []string{"config", "schema"}, want: []string{"healthCheckInterval", "clickToFocus", "settleDelay"}},
		{args: []string{"config", "schema", "focus"}, want: []string{"builtin_editors", "pass_payload", "window_class"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)

			var doc map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(out), &doc))
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}

	_, err := run(t, "config", "schema", "nope")
	assert.Error(t, err)
}

func TestSoundsList(t *testing.T) {
	isolate(t)
	theme := t.TempDir()
	for _, name := range []string{"complete.oga", "dialog-warning.oga"} {
		require.NoError(t, os.WriteFile(filepath.Join(theme, name), []byte("x"), 0644))
	}

	out, err := run(t, "sounds", "--theme-dir", theme)
	require.NoError(t, err)
	assert.Contains(t, out, "Theme sounds:")
	assert.Contains(t, out, "complete.oga")
	assert.Contains(t, out, "dialog-warning.oga - Permission prompt")

	out, err = run(t, "sounds", "--theme-dir", theme, "--json")
	require.NoError(t, err)
	var list []sounds.SoundInfo
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list, 2)
}

func TestSoundsRejectsBadVolume(t *testing.T) {
	isolate(t)
	_, err := run(t, "sounds", "--volume", "2")
	assert.Error(t, err)
}

func TestLogsPrintsTrailingLines(t *testing.T) {
	dir := isolate(t)
	logPath := filepath.Join(dir, "state", "claude-notifier", "daemon.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0700))
	require.NoError(t, os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0600))

	out, err := run(t, "logs", "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "two\nthree\n", out)

	out, err = run(t, "logs", "-n", "0")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", out)
}

func TestLogsMissingFile(t *testing.T) {
	isolate(t)
	_, err := run(t, "logs")
	assert.Error(t, err)
}

func TestLastLinesOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")
	require.NoError(t, os.WriteFile(path, []byte("a\nbb\nccc"), 0600))

	tests := []struct {
		n    int
		want int64
	}{
		{n: 0, want: 0},
		{n: 1, want: 5},
		{n: 2, want: 2},
		{n: 10, want: 0},
	}
	for _, tt := range tests {
		got, err := lastLinesOffset(path, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestFocusRequestCarriesCwdAndProjectDir(t *testing.T) {
	n := notification.Normalize(notification.Payload{
		"cwd":             "/home/u/mono/web",
		"transcript_path": "/home/u/.claude/projects/-home-u-mono/s.jsonl",
	}, time.Now())

	req := focusRequest(n)
	assert.Equal(t, "/home/u/mono/web", req.Cwd)
	assert.Equal(t, "/home/u/mono", req.ContextPath)
	assert.Equal(t, "mono", req.Project)
}
