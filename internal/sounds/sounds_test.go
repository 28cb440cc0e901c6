package sounds

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// newTheme lays out a fake sound tree:
//
//	root/freedesktop/stereo/{complete.oga,complete.wav,dialog-error.wav,readme.txt}
//	root/other/chime.ogg
//	root/other/deep/a/b/c/d/too-deep.wav
func newTheme(t *testing.T) (root, theme string) {
	t.Helper()
	root = t.TempDir()
	theme = filepath.Join(root, "freedesktop", "stereo")
	touch(t, filepath.Join(theme, "complete.oga"))
	touch(t, filepath.Join(theme, "complete.wav"))
	touch(t, filepath.Join(theme, "dialog-error.wav"))
	touch(t, filepath.Join(theme, "readme.txt"))
	touch(t, filepath.Join(root, "other", "chime.ogg"))
	touch(t, filepath.Join(root, "other", "deep", "a", "b", "c", "d", "too-deep.wav"))
	return root, theme
}

func TestResolve_PrefersOga(t *testing.T) {
	_, theme := newTheme(t)
	r := &Resolver{Dirs: []string{theme}}

	path, ok := r.Resolve("complete")
	if !ok {
		t.Fatal("expected complete to resolve")
	}
	if filepath.Ext(path) != ".oga" {
		t.Errorf("expected .oga to win, got %s", path)
	}

	path, ok = r.Resolve("dialog-error")
	if !ok || filepath.Ext(path) != ".wav" {
		t.Errorf("expected .wav fallback, got %q ok=%v", path, ok)
	}
}

func TestResolve_AbsolutePath(t *testing.T) {
	_, theme := newTheme(t)
	r := &Resolver{}

	abs := filepath.Join(theme, "dialog-error.wav")
	if path, ok := r.Resolve(abs); !ok || path != abs {
		t.Errorf("Resolve(abs) = %q, %v", path, ok)
	}
	if _, ok := r.Resolve(filepath.Join(theme, "missing.wav")); ok {
		t.Error("missing absolute path should not resolve")
	}
}

func TestResolve_Unknown(t *testing.T) {
	_, theme := newTheme(t)
	r := &Resolver{Dirs: []string{theme}}

	for _, name := range []string{"", "nope", "readme"} {
		if _, ok := r.Resolve(name); ok {
			t.Errorf("Resolve(%q) should fail", name)
		}
	}
}

func TestNewResolver_UsesFreedesktopTheme(t *testing.T) {
	r := NewResolver()
	if len(r.Dirs) != 1 || r.Dirs[0] != FreedesktopDir {
		t.Errorf("unexpected dirs: %v", r.Dirs)
	}
}

func TestDiscover_ThemeOnly(t *testing.T) {
	_, theme := newTheme(t)

	sounds := Discover(DiscoverOptions{ThemeDir: theme})
	if len(sounds) != 2 {
		t.Fatalf("expected 2 theme sounds, got %d: %+v", len(sounds), sounds)
	}

	if sounds[0].Name != "complete" || sounds[0].Format != "oga" {
		t.Errorf("expected complete.oga first, got %+v", sounds[0])
	}
	if sounds[1].Name != "dialog-error" || sounds[1].Format != "wav" {
		t.Errorf("expected dialog-error.wav second, got %+v", sounds[1])
	}
	for _, s := range sounds {
		if s.Source != SourceFreedesktop {
			t.Errorf("sound %s: expected source=%s, got %s", s.Name, SourceFreedesktop, s.Source)
		}
		if s.Description == "" {
			t.Errorf("sound %s: missing description", s.Name)
		}
	}
}

func TestDiscover_MissingTheme(t *testing.T) {
	sounds := Discover(DiscoverOptions{ThemeDir: "/nonexistent/path/that/does/not/exist"})
	if len(sounds) != 0 {
		t.Errorf("expected no sounds, got %d", len(sounds))
	}
}

func TestDiscover_WithSystem(t *testing.T) {
	root, theme := newTheme(t)

	sounds := Discover(DiscoverOptions{
		ThemeDir:       theme,
		SystemDir:      root,
		IncludeSystem:  true,
		MaxSystemDepth: 3,
	})

	var names []string
	for _, s := range sounds {
		names = append(names, s.Source+":"+s.Name)
	}
	want := []string{"freedesktop:complete", "freedesktop:dialog-error", "system:chime"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, names[i], want[i])
		}
	}
}

func TestFindByName(t *testing.T) {
	available := []SoundInfo{
		{Name: "dialog-warning", Source: SourceFreedesktop},
		{Name: "dialog-question", Source: SourceFreedesktop},
		{Name: "Chime", Source: SourceSystem},
	}

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{"dialog-warning", "dialog-warning", true},
		{"chime", "Chime", true},
		{"CHIME", "Chime", true},
		{"dialog-q", "dialog-question", true},
		{"nonexistent", "", false},
	}

	for _, tt := range tests {
		got, ok := FindByName(tt.query, available)
		if ok != tt.found {
			t.Errorf("FindByName(%q) found=%v, want %v", tt.query, ok, tt.found)
			continue
		}
		if got.Name != tt.want {
			t.Errorf("FindByName(%q) = %q, want %q", tt.query, got.Name, tt.want)
		}
	}
}

func TestFindByName_PrioritizeTheme(t *testing.T) {
	available := []SoundInfo{
		{Name: "complete", Source: SourceSystem, Path: "/system/complete.ogg"},
		{Name: "complete", Source: SourceFreedesktop, Path: "/theme/complete.oga"},
	}

	got, ok := FindByName("complete", available)
	if !ok {
		t.Fatal("expected to find complete")
	}
	if got.Source != SourceFreedesktop {
		t.Errorf("expected theme sound to win, got %s", got.Source)
	}
}

func TestFindByName_EmptyList(t *testing.T) {
	if _, ok := FindByName("anything", nil); ok {
		t.Error("expected not found on empty list")
	}
}

func TestDescriptions_CoverClassificationSounds(t *testing.T) {
	for _, name := range []string{"dialog-warning", "dialog-question", "complete", "dialog-error", "message-new-instant"} {
		if descriptions[name] == "" {
			t.Errorf("missing description for %s", name)
		}
	}
}
