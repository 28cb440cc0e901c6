package focus

import (
	"context"
	"fmt"

	"github.com/777genius/claude-notifier/internal/logging"
	"github.com/777genius/claude-notifier/internal/window"
)

// Locator finds an editor window.
type Locator interface {
	Locate(ctx context.Context, t window.Target, projectHint string) (window.Candidate, error)
}

// Activator raises and focuses a window.
type Activator interface {
	Activate(ctx context.Context, h window.Handle) error
}

// Runner executes a custom focus command.
type Runner interface {
	Run(ctx context.Context, command string, stdin interface{}) error
}

// Request describes one focus attempt.
type Request struct {
	// Cwd is looked up in the project mapping first, then ContextPath.
	Cwd         string
	ContextPath string
	// Project is the title hint used to pick among an editor's windows.
	Project string
	// Context is piped to custom commands with pass_payload set.
	Context map[string]interface{}
}

// Result reports what a successful focus did.
type Result struct {
	Policy Policy
	Window window.Candidate // zero for custom policies
}

// Focuser runs resolve, locate and activate for one request.
type Focuser struct {
	Store     *Store
	Locator   Locator   // nil when the window query tool is missing
	Activator Activator // nil when no display is available
	Runner    Runner
}

// Focus resolves the policy for req and executes it. Failures are returned,
// never retried.
func (f *Focuser) Focus(ctx context.Context, req Request) (Result, error) {
	policy := f.Store.Resolve(req.Cwd, req.ContextPath)
	res := Result{Policy: policy}
	logging.Debug("focus %q: policy %s", req.ContextPath, policy)

	switch policy.Kind {
	case KindCustom:
		if f.Runner == nil {
			return res, fmt.Errorf("%w: no command runner", ErrCommandFailed)
		}
		var stdin interface{}
		if policy.PassPayload {
			stdin = req.Context
			if stdin == nil {
				stdin = map[string]interface{}{}
			}
		}
		return res, f.Runner.Run(ctx, policy.Command, stdin)

	case KindBuiltin:
		editor, err := f.Store.Editor(policy.EditorID)
		if err != nil {
			return res, err
		}
		if f.Locator == nil {
			return res, window.ErrToolUnavailable
		}
		if f.Activator == nil {
			return res, window.ErrActivationUnavailable
		}

		cand, err := f.Locator.Locate(ctx, editor.Target(policy.EditorID), req.Project)
		if err != nil {
			return res, fmt.Errorf("locate %s: %w", policy.EditorID, err)
		}
		res.Window = cand
		if err := f.Activator.Activate(ctx, cand.Handle); err != nil {
			return res, err
		}
		logging.Info("focused %s window %s %q", policy.EditorID, cand.Handle, cand.Title)
		return res, nil

	default:
		return res, fmt.Errorf("unknown policy kind %q", policy.Kind)
	}
}
