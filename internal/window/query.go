package window

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Query is the windowing-system lookup used by the Locator.
type Query interface {
	SearchClass(ctx context.Context, class string) ([]Handle, error)
	SearchName(ctx context.Context, name string) ([]Handle, error)
	Title(ctx context.Context, h Handle) (string, error)
}

// RunFunc executes a command and returns its stdout.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Xdotool implements Query by shelling out to xdotool.
type Xdotool struct {
	Path string
	Run  RunFunc
}

// NewXdotool locates xdotool on PATH.
func NewXdotool() (*Xdotool, error) {
	path, err := exec.LookPath("xdotool")
	if err != nil {
		return nil, fmt.Errorf("%w: xdotool: %v", ErrToolUnavailable, err)
	}
	return &Xdotool{Path: path, Run: runCommand}, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// SearchClass returns windows whose WM_CLASS matches class.
func (x *Xdotool) SearchClass(ctx context.Context, class string) ([]Handle, error) {
	return x.search(ctx, "--class", class)
}

// SearchName returns windows whose title matches name.
func (x *Xdotool) SearchName(ctx context.Context, name string) ([]Handle, error) {
	return x.search(ctx, "--name", name)
}

func (x *Xdotool) search(ctx context.Context, flag, pattern string) ([]Handle, error) {
	if pattern == "" {
		return nil, nil
	}
	out, err := x.Run(ctx, x.Path, "search", flag, pattern)
	if err != nil {
		var exitErr *exec.ExitError
		// xdotool exits 1 with empty output when nothing matches.
		if errors.As(err, &exitErr) && len(bytes.TrimSpace(out)) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("xdotool search %s %q: %w", flag, pattern, err)
	}
	return parseHandles(out), nil
}

// Title returns the window's title.
func (x *Xdotool) Title(ctx context.Context, h Handle) (string, error) {
	out, err := x.Run(ctx, x.Path, "getwindowname", fmt.Sprint(uint32(h)))
	if err != nil {
		return "", fmt.Errorf("xdotool getwindowname %s: %w", h, err)
	}
	return strings.TrimRight(string(out), "\r\n"), nil
}

func parseHandles(out []byte) []Handle {
	var handles []Handle
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		h, err := ParseHandle(line)
		if err != nil {
			continue
		}
		handles = append(handles, h)
	}
	return handles
}
