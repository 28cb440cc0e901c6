package platform

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// GetGitBranch returns the current branch of the repository containing cwd.
// Returns "" when cwd is empty, not a repository, git is missing, or HEAD is detached.
func GetGitBranch(cwd string) string {
	if cwd == "" || !FileExists(cwd) {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", "-C", cwd, "rev-parse", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return ""
	}

	branch := strings.TrimSpace(string(out))
	if branch == "HEAD" {
		return ""
	}
	return branch
}
