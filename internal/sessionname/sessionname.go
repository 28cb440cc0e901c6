// ABOUTME: Derives short, memorable labels from Claude Code session IDs.
// ABOUTME: The same session always maps to the same word, so notifications can be told apart.
package sessionname

import (
	"strconv"
	"strings"
)

// Unknown is returned for missing or malformed session IDs.
const Unknown = "unknown"

var adjectives = []string{
	"bold", "brave", "bright", "calm", "clever",
	"cool", "cosmic", "crisp", "daring", "eager",
	"fair", "fancy", "fast", "gentle", "glad",
	"grand", "happy", "kind", "lively", "lucky",
	"merry", "noble", "proud", "quick", "quiet",
	"rapid", "smart", "solid", "swift", "warm",
	"wise", "witty", "zesty", "agile", "alert",
}

var nouns = []string{
	"bear", "bird", "cat", "deer", "eagle",
	"fish", "fox", "hawk", "lion", "owl",
	"star", "moon", "sun", "wind", "wave",
	"tree", "river", "mountain", "ocean", "cloud",
	"tiger", "wolf", "dragon", "phoenix", "falcon",
	"comet", "galaxy", "planet", "nova", "meteor",
	"forest", "canyon", "valley", "peak", "storm",
}

var words = append(append([]string{}, adjectives...), nouns...)

// Generate returns a deterministic single word for a session ID, e.g. "zesty"
// for "73b5e210-ec1a-4294-96e4-c2aecb2e1063".
func Generate(sessionID string) string {
	clean := strings.ToLower(strings.ReplaceAll(sessionID, "-", ""))
	if len(clean) < 8 || clean == Unknown {
		return Unknown
	}

	seed, err := strconv.ParseUint(clean[:6], 16, 32)
	if err != nil {
		seed = 0
	}
	return words[int(seed)%len(words)]
}

// Label formats a session for display as "<short id> (<word>)". Missing IDs
// yield "".
func Label(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	name := Generate(sessionID)
	short := sessionID
	if i := strings.IndexByte(short, '-'); i > 0 {
		short = short[:i]
	}
	if len(short) > 8 {
		short = short[:8]
	}
	if name == Unknown {
		return short
	}
	return short + " (" + name + ")"
}
