package notify

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zoobzio/capitan"

	"github.com/dshills/reviser/internal/commit"
	"github.com/dshills/reviser/internal/tracker"
)

func transition() tracker.Transition {
	return tracker.Transition{
		Component:   "WPLib",
		Current:     "def5678",
		Previous:    "abc1234",
		HadPrevious: true,
	}
}

func TestCommitRevisedSignal(t *testing.T) {
	if CommitRevised.Name() != "reviser.commit.revised" {
		t.Errorf("expected name 'reviser.commit.revised', got %q", CommitRevised.Name())
	}
}

func TestSignalSink(t *testing.T) {
	type received struct {
		component, commit, previous string
	}
	got := make(chan received, 1)
	listener := capitan.Hook(CommitRevised, func(_ context.Context, e *capitan.Event) {
		component, _ := KeyComponent.From(e)
		c, _ := KeyCommit.From(e)
		prev, _ := KeyPrevious.From(e)
		got <- received{component, c, prev}
	})
	defer listener.Close()

	SignalSink{}.CommitRevised(context.Background(), transition())

	select {
	case r := <-got:
		if r.component != "WPLib" {
			t.Errorf("component = %q, want %q", r.component, "WPLib")
		}
		if r.commit != "def5678" {
			t.Errorf("commit = %q, want %q", r.commit, "def5678")
		}
		if r.previous != "abc1234" {
			t.Errorf("previous = %q, want %q", r.previous, "abc1234")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for CommitRevised signal")
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: log.New(&buf)}

	sink.CommitRevised(context.Background(), transition())
	sink.CommitRevised(context.Background(), tracker.Transition{Component: "App", Current: commit.Missing})

	out := buf.String()
	for _, want := range []string{"commit revised", "WPLib", "def5678", "abc1234", "App", "0000000", "(none)"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogSink_NilLogger(t *testing.T) {
	LogSink{}.CommitRevised(context.Background(), transition())
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell commands use sh")
	}
}

func TestCommandSink_Env(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	sink := CommandSink{
		Command: `printf '%s %s %s' "$REVISER_COMPONENT" "$REVISER_COMMIT" "$REVISER_PREVIOUS" > "` + out + `"`,
	}
	sink.CommitRevised(context.Background(), transition())

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("command did not run: %v", err)
	}
	if got, want := string(data), "WPLib def5678 abc1234"; got != want {
		t.Errorf("command output = %q, want %q", got, want)
	}
}

func TestCommandSink_FirstRecordPreviousEmpty(t *testing.T) {
	requireShell(t)
	var stdout bytes.Buffer
	sink := CommandSink{
		Command: `printf '[%s]' "$REVISER_PREVIOUS"`,
		Stdout:  &stdout,
	}
	sink.CommitRevised(context.Background(), tracker.Transition{Component: "App", Current: "abc1234"})

	if got := stdout.String(); got != "[]" {
		t.Errorf("stdout = %q, want %q", got, "[]")
	}
}

func TestCommandSink_Dir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	sink := CommandSink{Command: "touch marker", Dir: dir}
	sink.CommitRevised(context.Background(), transition())

	if _, err := os.Stat(filepath.Join(dir, "marker")); err != nil {
		t.Errorf("command did not run in Dir: %v", err)
	}
}

func TestCommandSink_FailureLogged(t *testing.T) {
	requireShell(t)
	var buf bytes.Buffer
	sink := CommandSink{Command: "exit 3", Logger: log.New(&buf)}

	sink.CommitRevised(context.Background(), transition())

	if !strings.Contains(buf.String(), "on-revised command failed") {
		t.Errorf("expected failure to be logged, got:\n%s", buf.String())
	}
}

func TestCommandSink_Timeout(t *testing.T) {
	requireShell(t)
	var buf bytes.Buffer
	sink := CommandSink{Command: "sleep 5", Timeout: 100 * time.Millisecond, Logger: log.New(&buf)}

	start := time.Now()
	sink.CommitRevised(context.Background(), transition())

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("command ran for %v, expected timeout", elapsed)
	}
	if !strings.Contains(buf.String(), "timed out") {
		t.Errorf("expected timeout to be logged, got:\n%s", buf.String())
	}
}

func TestCommandSink_Empty(t *testing.T) {
	var buf bytes.Buffer
	CommandSink{Logger: log.New(&buf)}.CommitRevised(context.Background(), transition())
	if buf.Len() != 0 {
		t.Errorf("empty command should do nothing, got:\n%s", buf.String())
	}
}

func TestMulti(t *testing.T) {
	var order []string
	record := func(name string) tracker.Sink {
		return tracker.SinkFunc(func(_ context.Context, tr tracker.Transition) {
			order = append(order, name+":"+tr.Component)
		})
	}

	m := Multi{record("a"), nil, record("b")}
	m.CommitRevised(context.Background(), transition())

	if got := strings.Join(order, ","); got != "a:WPLib,b:WPLib" {
		t.Errorf("delivery order = %q, want %q", got, "a:WPLib,b:WPLib")
	}
}
