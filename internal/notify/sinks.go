package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zoobzio/capitan"

	"github.com/dshills/reviser/internal/tracker"
)

// Environment variables set for CommandSink commands.
const (
	EnvComponent = "REVISER_COMPONENT"
	EnvCommit    = "REVISER_COMMIT"
	EnvPrevious  = "REVISER_PREVIOUS"
)

// DefaultCommandTimeout bounds a CommandSink command when no timeout is set.
const DefaultCommandTimeout = 30 * time.Second

// SignalSink emits CommitRevised for each transition.
type SignalSink struct{}

// CommitRevised implements tracker.Sink.
func (SignalSink) CommitRevised(ctx context.Context, t tracker.Transition) {
	capitan.Emit(ctx, CommitRevised,
		KeyComponent.Field(t.Component),
		KeyCommit.Field(t.Current.String()),
		KeyPrevious.Field(previous(t)),
	)
}

// LogSink logs each transition at info level.
type LogSink struct {
	Logger *log.Logger
}

// CommitRevised implements tracker.Sink.
func (s LogSink) CommitRevised(_ context.Context, t tracker.Transition) {
	logger := s.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	kv := []any{"component", t.Component, "commit", t.Current.Display()}
	if t.HadPrevious {
		kv = append(kv, "previous", t.Previous.Display())
	} else {
		kv = append(kv, "previous", "(none)")
	}
	logger.Info("commit revised", kv...)
}

// CommandSink runs Command through the shell for each transition. Failures
// are logged and never reach the tracker.
type CommandSink struct {
	Command string
	Dir     string
	Timeout time.Duration
	Logger  *log.Logger
	// Stdout and Stderr receive the command's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// CommitRevised implements tracker.Sink.
func (s CommandSink) CommitRevised(ctx context.Context, t tracker.Transition) {
	if s.Command == "" {
		return
	}
	logger := s.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := s.run(ctx, t); err != nil {
		logger.Warn("on-revised command failed", "component", t.Component, "command", s.Command, "err", err)
		return
	}
	logger.Debug("on-revised command finished", "component", t.Component)
}

func (s CommandSink) run(ctx context.Context, t tracker.Transition) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCommand(ctx, s.Command)
	cmd.Dir = s.Dir
	cmd.Env = append(os.Environ(),
		EnvComponent+"="+t.Component,
		EnvCommit+"="+t.Current.String(),
		EnvPrevious+"="+previous(t),
	)
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("timed out after %s", timeout)
		}
		return err
	}
	return nil
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// Multi delivers each transition to every sink in order.
type Multi []tracker.Sink

// CommitRevised implements tracker.Sink.
func (m Multi) CommitRevised(ctx context.Context, t tracker.Transition) {
	for _, s := range m {
		if s != nil {
			s.CommitRevised(ctx, t)
		}
	}
}

func previous(t tracker.Transition) string {
	if !t.HadPrevious {
		return ""
	}
	return t.Previous.String()
}
