package notification

import (
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultProjectName is used when neither the transcript nor the cwd names a project.
const DefaultProjectName = "Claude Code"

// transcriptMarker precedes the encoded project directory in a transcript path,
// e.g. ~/.claude/projects/-home-u-Projects-foo/<session>.jsonl.
const transcriptMarker = "/projects/"

// ResolveProjectName picks a display name for the project a payload came from.
//
// The transcript path embeds an encoded copy of the directory the session was
// started in. Walking cwd's ancestors and comparing encodings finds that
// directory even when the hook fired from a subdirectory. Without a match the
// last component of cwd is used, then DefaultProjectName.
func ResolveProjectName(cwd, transcriptPath string) string {
	if dir := ProjectDir(cwd, transcriptPath); dir != "" {
		if base := filepath.Base(dir); base != "" && base != string(filepath.Separator) && base != "." {
			return base
		}
	}

	if cwd != "" {
		base := filepath.Base(filepath.Clean(cwd))
		if base != "" && base != string(filepath.Separator) && base != "." {
			return base
		}
	}
	return DefaultProjectName
}

// ProjectDir returns the ancestor of cwd (cwd included) whose encoding matches the
// project segment of transcriptPath, or "" when there is no match.
func ProjectDir(cwd, transcriptPath string) string {
	segment := transcriptSegment(transcriptPath)
	if segment == "" || cwd == "" {
		return ""
	}

	dir := filepath.Clean(cwd)
	for {
		enc := EncodeProjectDir(dir)
		if enc == segment || strings.TrimPrefix(enc, "-") == segment {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// EncodeProjectDir applies the transcript directory encoding: every rune that is
// not a letter or digit (path separators included) becomes '-'.
func EncodeProjectDir(dir string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '-'
	}, dir)
}

// transcriptSegment returns the path segment following the marker.
func transcriptSegment(transcriptPath string) string {
	if transcriptPath == "" {
		return ""
	}
	p := filepath.ToSlash(transcriptPath)
	idx := strings.LastIndex(p, transcriptMarker)
	if idx < 0 {
		return ""
	}
	rest := p[idx+len(transcriptMarker):]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}
