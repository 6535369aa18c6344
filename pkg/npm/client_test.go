package npm

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composer-npm-bridge/pkg/errors"
)

// recorder collects collaborator calls in order.
type recorder struct {
	calls []string
}

func (r *recorder) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

type fakeFinder struct {
	rec  *recorder
	path string
}

func (f *fakeFinder) Find(name string) (string, bool) {
	f.rec.record("find %s", name)
	return f.path, f.path != ""
}

type fakeExecutor struct {
	rec     *recorder
	status  int
	err     error
	timeout int
}

func (e *fakeExecutor) Execute(_ context.Context, command string) (int, error) {
	e.rec.record("execute %s", command)
	return e.status, e.err
}

func (e *fakeExecutor) Timeout() int {
	e.rec.record("getTimeout")
	return e.timeout
}

func (e *fakeExecutor) SetTimeout(seconds int) {
	e.rec.record("setTimeout %d", seconds)
	e.timeout = seconds
}

type fixture struct {
	rec      *recorder
	finder   *fakeFinder
	executor *fakeExecutor
	client   *Client
}

func newFixture() *fixture {
	rec := &recorder{}
	f := &fixture{
		rec:      rec,
		finder:   &fakeFinder{rec: rec, path: "/path/to/npm"},
		executor: &fakeExecutor{rec: rec, timeout: 300},
	}
	workdir := Workdir{
		Getwd: func() (string, error) {
			rec.record("getcwd")
			return "/path/to/cwd", nil
		},
		Chdir: func(dir string) error {
			rec.record("chdir %s", dir)
			return nil
		},
	}
	f.client = NewClient(f.executor, f.finder, WithWorkdir(workdir))
	return f
}

func (f *fixture) assertCalls(t *testing.T, want ...string) {
	t.Helper()
	if !reflect.DeepEqual(f.rec.calls, want) {
		t.Errorf("calls =\n  %q\nwant\n  %q", f.rec.calls, want)
	}
}

func TestInstall(t *testing.T) {
	f := newFixture()

	if err := f.client.Install(context.Background(), "", true); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	f.assertCalls(t,
		"find npm",
		"execute '/path/to/npm' 'install'",
	)
}

func TestInstallWorking(t *testing.T) {
	f := newFixture()

	if err := f.client.Install(context.Background(), "/path/to/project", true); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	f.assertCalls(t,
		"find npm",
		"getcwd",
		"chdir /path/to/project",
		"execute '/path/to/npm' 'install'",
		"chdir /path/to/cwd",
	)
}

func TestInstallTimeout(t *testing.T) {
	f := newFixture()
	f.client.SetTimeout(900)

	if err := f.client.Install(context.Background(), "", true); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	f.assertCalls(t,
		"find npm",
		"getTimeout",
		"setTimeout 900",
		"execute '/path/to/npm' 'install'",
		"setTimeout 300",
	)
}

func TestInstallProductionMode(t *testing.T) {
	f := newFixture()

	if err := f.client.Install(context.Background(), "/path/to/project", false); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	f.assertCalls(t,
		"find npm",
		"getcwd",
		"chdir /path/to/project",
		"execute '/path/to/npm' 'install' '--production'",
		"chdir /path/to/cwd",
	)
}

func TestInstallWorkingWithTimeout(t *testing.T) {
	f := newFixture()
	f.client.SetTimeout(900)

	if err := f.client.Install(context.Background(), "/path/to/project", false); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	f.assertCalls(t,
		"find npm",
		"getcwd",
		"chdir /path/to/project",
		"getTimeout",
		"setTimeout 900",
		"execute '/path/to/npm' 'install' '--production'",
		"setTimeout 300",
		"chdir /path/to/cwd",
	)
}

func TestInstallFailureNpmNotFound(t *testing.T) {
	f := newFixture()
	f.finder.path = ""
	f.client.SetTimeout(900)

	err := f.client.Install(context.Background(), "/path/to/project", true)
	if !errors.Is(err, errors.ErrCodeNpmNotFound) {
		t.Fatalf("Install() error = %v, want %s", err, errors.ErrCodeNpmNotFound)
	}

	f.assertCalls(t, "find npm")
}

func TestInstallFailureCommandFailed(t *testing.T) {
	f := newFixture()
	f.executor.status = 1
	f.client.SetTimeout(900)

	err := f.client.Install(context.Background(), "/path/to/project", true)
	if !errors.Is(err, errors.ErrCodeCommandFailed) {
		t.Fatalf("Install() error = %v, want %s", err, errors.ErrCodeCommandFailed)
	}

	var failed *errors.CommandFailedError
	if !stderrors.As(err, &failed) {
		t.Fatalf("Install() error type = %T, want *errors.CommandFailedError", err)
	}
	if failed.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", failed.ExitCode)
	}
	if failed.Command != "'/path/to/npm' 'install'" {
		t.Errorf("Command = %s, want '/path/to/npm' 'install'", failed.Command)
	}

	// Restoration happens before the failure is reported.
	f.assertCalls(t,
		"find npm",
		"getcwd",
		"chdir /path/to/project",
		"getTimeout",
		"setTimeout 900",
		"execute '/path/to/npm' 'install'",
		"setTimeout 300",
		"chdir /path/to/cwd",
	)
}

func TestInstallExecutorErrorRestoresState(t *testing.T) {
	f := newFixture()
	f.executor.status = -1
	f.executor.err = stderrors.New("fork failed")
	f.client.SetTimeout(900)

	err := f.client.Install(context.Background(), "/path/to/project", true)
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Fatalf("Install() error = %v, want %s", err, errors.ErrCodeInternal)
	}

	f.assertCalls(t,
		"find npm",
		"getcwd",
		"chdir /path/to/project",
		"getTimeout",
		"setTimeout 900",
		"execute '/path/to/npm' 'install'",
		"setTimeout 300",
		"chdir /path/to/cwd",
	)
}

func TestInstallCanceled(t *testing.T) {
	f := newFixture()
	f.executor.status = -1
	f.executor.err = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.client.Install(ctx, "", true)
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Fatalf("Install() error = %v, want %s", err, errors.ErrCodeCanceled)
	}
}

func TestInstallChdirFailure(t *testing.T) {
	f := newFixture()
	f.client.workdir.Chdir = func(dir string) error {
		f.rec.record("chdir %s", dir)
		return stderrors.New("no such directory")
	}

	err := f.client.Install(context.Background(), "/path/to/missing", true)
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Fatalf("Install() error = %v, want %s", err, errors.ErrCodeInvalidPath)
	}

	f.assertCalls(t,
		"find npm",
		"getcwd",
		"chdir /path/to/missing",
	)
}

func TestInstallGetwdFailure(t *testing.T) {
	f := newFixture()
	f.client.workdir.Getwd = func() (string, error) {
		return "", stderrors.New("cwd removed")
	}

	err := f.client.Install(context.Background(), "/path/to/project", true)
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Fatalf("Install() error = %v, want %s", err, errors.ErrCodeInternal)
	}

	f.assertCalls(t, "find npm")
}

func TestUpdate(t *testing.T) {
	f := newFixture()

	if err := f.client.Update(context.Background(), ""); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	f.assertCalls(t,
		"find npm",
		"execute '/path/to/npm' 'update'",
	)
}

func TestUpdateWorking(t *testing.T) {
	f := newFixture()

	if err := f.client.Update(context.Background(), "/path/to/project"); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	f.assertCalls(t,
		"find npm",
		"getcwd",
		"chdir /path/to/project",
		"execute '/path/to/npm' 'update'",
		"chdir /path/to/cwd",
	)
}

func TestUpdateTimeout(t *testing.T) {
	f := newFixture()
	f.client.SetTimeout(900)

	if err := f.client.Update(context.Background(), ""); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	f.assertCalls(t,
		"find npm",
		"getTimeout",
		"setTimeout 900",
		"execute '/path/to/npm' 'update'",
		"setTimeout 300",
	)
}

func TestUpdateFailureNpmNotFound(t *testing.T) {
	f := newFixture()
	f.finder.path = ""

	err := f.client.Update(context.Background(), "/path/to/project")
	if !errors.Is(err, errors.ErrCodeNpmNotFound) {
		t.Fatalf("Update() error = %v, want %s", err, errors.ErrCodeNpmNotFound)
	}

	f.assertCalls(t, "find npm")
}

func TestUpdateFailureCommandFailed(t *testing.T) {
	f := newFixture()
	f.executor.status = 1

	err := f.client.Update(context.Background(), "/path/to/project")
	if code, ok := errors.ExitCode(err); !ok || code != 1 {
		t.Fatalf("Update() exit code = (%d, %v), want (1, true); err = %v", code, ok, err)
	}
}

func TestClearTimeout(t *testing.T) {
	f := newFixture()
	f.client.SetTimeout(900)
	f.client.ClearTimeout()

	if err := f.client.Update(context.Background(), ""); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	f.assertCalls(t,
		"find npm",
		"execute '/path/to/npm' 'update'",
	)
}

func TestValid(t *testing.T) {
	f := newFixture()

	f.finder.path = ""
	if f.client.Valid() {
		t.Error("Valid() = true, want false when npm is missing")
	}

	f.finder.path = "/path/to/npm"
	if !f.client.Valid() {
		t.Error("Valid() = false, want true when npm is found")
	}

	f.assertCalls(t, "find npm", "find npm")
}

func TestClientDebugLog(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture()
	f.client = NewClient(f.executor, f.finder, WithLogger(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})))

	if err := f.client.Update(context.Background(), ""); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	out := buf.String()
	if n := strings.Count(out, "running npm"); n != 1 {
		t.Errorf("\"running npm\" logged %d times, want 1:\n%s", n, out)
	}
	if n := strings.Count(out, "npm finished"); n != 1 {
		t.Errorf("\"npm finished\" logged %d times, want 1:\n%s", n, out)
	}
}
