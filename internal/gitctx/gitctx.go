package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds every git invocation when the caller gives none.
const DefaultTimeout = 5 * time.Second

// ErrNoOutput is returned when git succeeds but prints nothing.
var ErrNoOutput = errors.New("git produced no output")

// Client runs git subprocesses.
type Client struct {
	// Binary is the git executable. Defaults to "git" on PATH.
	Binary string
	// Timeout bounds each invocation. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// LatestCommit returns the first line of `git log -1 --oneline` run in dir.
// The abbreviated hash is the leading field of that line.
func (c Client) LatestCommit(ctx context.Context, dir string) (string, error) {
	out, err := c.output(ctx, dir, "log", "-1", "--oneline")
	if err != nil {
		return "", fmt.Errorf("git log -1 --oneline: %w", err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrNoOutput
	}
	return line, nil
}

// GetRepoMeta collects repository metadata for dir.
func (c Client) GetRepoMeta(ctx context.Context, dir string) (RepoMeta, error) {
	root, err := c.output(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := c.output(ctx, dir, "rev-parse", "--short=7", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := c.output(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// HooksDir returns the hooks directory of the repository containing dir.
func (c Client) HooksDir(ctx context.Context, dir string) (string, error) {
	out, err := c.output(ctx, dir, "rev-parse", "--git-dir")
	if err != nil {
		return "", fmt.Errorf("not a git repository (git rev-parse --git-dir failed)")
	}
	gitDir := strings.TrimSpace(out)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}
	return filepath.Join(gitDir, "hooks"), nil
}

func (c Client) output(ctx context.Context, dir string, args ...string) (string, error) {
	bin := c.Binary
	if bin == "" {
		bin = "git"
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s timed out: %w", bin, ctx.Err())
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
