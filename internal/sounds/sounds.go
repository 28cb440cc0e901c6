// ABOUTME: Sound discovery and name resolution for notification sounds.
// ABOUTME: Pure filesystem scanning of XDG sound themes with no audio dependencies (CGO-free).

package sounds

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FreedesktopDir holds the stereo sounds of the default freedesktop theme.
const FreedesktopDir = "/usr/share/sounds/freedesktop/stereo"

// SystemDir is the root scanned for every installed sound theme.
const SystemDir = "/usr/share/sounds"

// Source values for SoundInfo.
const (
	SourceFreedesktop = "freedesktop"
	SourceSystem      = "system"
)

// Extensions tried in order when resolving a theme name.
var themeExtensions = []string{".oga", ".wav"}

// SoundInfo represents a discovered sound file.
type SoundInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Format      string `json:"format"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

// DiscoverOptions controls which sound sources to scan.
type DiscoverOptions struct {
	ThemeDir       string // defaults to FreedesktopDir
	SystemDir      string // defaults to SystemDir
	IncludeSystem  bool
	MaxSystemDepth int // Max directory depth for system sounds (default 5)
}

// descriptions maps freedesktop sound names to human-readable descriptions.
var descriptions = map[string]string{
	"dialog-warning":      "Permission prompt",
	"dialog-question":     "Waiting for input",
	"complete":            "Task or auth completed",
	"dialog-error":        "Error",
	"message-new-instant": "Generic notification",
	"dialog-information":  "Information",
	"bell":                "Terminal bell",
	"message":             "Message received",
	"alarm-clock-elapsed": "Alarm",
}

// Resolver turns a sound name from a classification or config override into a file path.
type Resolver struct {
	Dirs []string
}

// NewResolver returns a resolver over the freedesktop theme.
func NewResolver() *Resolver {
	return &Resolver{Dirs: []string{FreedesktopDir}}
}

// Resolve maps name to a playable file. Absolute paths are used as-is when they
// exist; theme names are looked up per directory trying .oga then .wav.
func (r *Resolver) Resolve(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if filepath.IsAbs(name) {
		if fileExists(name) {
			return name, true
		}
		return "", false
	}
	for _, dir := range r.Dirs {
		for _, ext := range themeExtensions {
			path := filepath.Join(dir, name+ext)
			if fileExists(path) {
				return path, true
			}
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Discover scans for available sounds. Theme sounds are listed first, then system sounds.
func Discover(opts DiscoverOptions) []SoundInfo {
	themeDir := opts.ThemeDir
	if themeDir == "" {
		themeDir = FreedesktopDir
	}

	result := discoverTheme(themeDir)

	if opts.IncludeSystem {
		depth := opts.MaxSystemDepth
		if depth <= 0 {
			depth = 5
		}
		sysDir := opts.SystemDir
		if sysDir == "" {
			sysDir = SystemDir
		}
		result = append(result, discoverSystem(sysDir, themeDir, depth)...)
	}

	// Sort within each source group for stable output
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Source != result[j].Source {
			return result[i].Source == SourceFreedesktop
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// FindByName searches for a sound by name with 3-level matching:
// 1. Exact match
// 2. Case-insensitive match
// 3. Prefix match (case-insensitive)
// Theme sounds are prioritized over system sounds at every level.
func FindByName(name string, available []SoundInfo) (SoundInfo, bool) {
	nameLower := strings.ToLower(name)

	if s, ok := findPreferTheme(available, func(s SoundInfo) bool {
		return s.Name == name
	}); ok {
		return s, true
	}

	if s, ok := findPreferTheme(available, func(s SoundInfo) bool {
		return strings.ToLower(s.Name) == nameLower
	}); ok {
		return s, true
	}

	if s, ok := findPreferTheme(available, func(s SoundInfo) bool {
		return strings.HasPrefix(strings.ToLower(s.Name), nameLower)
	}); ok {
		return s, true
	}

	return SoundInfo{}, false
}

// findPreferTheme finds the first match, preferring the freedesktop theme over other sources.
func findPreferTheme(available []SoundInfo, match func(SoundInfo) bool) (SoundInfo, bool) {
	var firstOther *SoundInfo
	for i, s := range available {
		if match(s) {
			if s.Source == SourceFreedesktop {
				return s, true
			}
			if firstOther == nil {
				firstOther = &available[i]
			}
		}
	}
	if firstOther != nil {
		return *firstOther, true
	}
	return SoundInfo{}, false
}

// discoverTheme lists the playable files directly inside dir. When a name exists
// in several formats the preferred extension wins.
func discoverTheme(dir string) []SoundInfo {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	seen := make(map[string]int)
	var result []SoundInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		rank := extRank(ext)
		if rank < 0 {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		info := SoundInfo{
			Name:        name,
			Path:        filepath.Join(dir, e.Name()),
			Format:      ext[1:],
			Source:      SourceFreedesktop,
			Description: descriptions[name],
		}
		if idx, ok := seen[name]; ok {
			if rank < extRank("."+result[idx].Format) {
				result[idx] = info
			}
			continue
		}
		seen[name] = len(result)
		result = append(result, info)
	}
	return result
}

func extRank(ext string) int {
	for i, e := range themeExtensions {
		if e == ext {
			return i
		}
	}
	if ext == ".ogg" {
		return len(themeExtensions)
	}
	return -1
}

// discoverSystem walks baseDir for OGG and WAV files, skipping the theme directory.
func discoverSystem(baseDir, themeDir string, maxDepth int) []SoundInfo {
	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		return nil
	}

	var result []SoundInfo
	baseDepth := strings.Count(filepath.Clean(baseDir), string(os.PathSeparator))
	themeDir = filepath.Clean(themeDir)

	_ = filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors silently
		}

		if d.IsDir() {
			if filepath.Clean(path) == themeDir {
				return filepath.SkipDir
			}
			currentDepth := strings.Count(filepath.Clean(path), string(os.PathSeparator)) - baseDepth
			if currentDepth >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if extRank(ext) < 0 {
			return nil
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		result = append(result, SoundInfo{
			Name:        name,
			Path:        path,
			Format:      ext[1:], // remove leading dot
			Source:      SourceSystem,
			Description: descriptions[name],
		})

		return nil
	})

	return result
}
