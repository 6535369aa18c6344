package npm

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	osexec "os/exec"
	"sync"
	"time"

	goexec "github.com/jmgilman/go/exec"

	"github.com/matzehuels/composer-npm-bridge/pkg/errors"
)

// DefaultTimeout is the execution timeout, in seconds, of a new ShellExecutor.
const DefaultTimeout = 300

// ExecutorOption configures a ShellExecutor.
type ExecutorOption func(*ShellExecutor)

// WithOutput sets the writers the child process output is streamed to.
// Nil writers keep the current setting.
func WithOutput(stdout, stderr io.Writer) ExecutorOption {
	return func(e *ShellExecutor) {
		if stdout != nil {
			e.stdout = stdout
		}
		if stderr != nil {
			e.stderr = stderr
		}
	}
}

// WithShell sets the interpreter and the flag that precede the command line,
// e.g. "bash", "-c".
func WithShell(shell ...string) ExecutorOption {
	return func(e *ShellExecutor) {
		if len(shell) > 0 {
			e.shell = shell
		}
	}
}

// WithTimeout sets the initial execution timeout in seconds.
func WithTimeout(seconds int) ExecutorOption {
	return func(e *ShellExecutor) {
		e.timeout = seconds
	}
}

// ShellExecutor runs command lines through a POSIX shell. The command line
// is exec'd by the shell, so cancellation and the deadline reach the command
// itself rather than only the shell. A timeout of zero or less disables the
// deadline.
type ShellExecutor struct {
	mu      sync.Mutex
	timeout int
	stdout  io.Writer
	stderr  io.Writer
	shell   []string
}

// NewShellExecutor creates a ShellExecutor running "sh -c", streaming to
// os.Stdout and os.Stderr with DefaultTimeout.
func NewShellExecutor(opts ...ExecutorOption) *ShellExecutor {
	e := &ShellExecutor{
		timeout: DefaultTimeout,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		shell:   []string{"sh", "-c"},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout implements ProcessExecutor.
func (e *ShellExecutor) Timeout() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeout
}

// SetTimeout implements ProcessExecutor.
func (e *ShellExecutor) SetTimeout(seconds int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = seconds
}

// Execute implements ProcessExecutor. Output is streamed to the configured
// writers while the command runs. Only the first simple command of a
// compound line survives the exec.
func (e *ShellExecutor) Execute(ctx context.Context, command string) (int, error) {
	timeout := e.Timeout()

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	runner := goexec.New(
		goexec.WithInheritEnv(),
		goexec.WithStdout(e.stdout),
		goexec.WithStderr(e.stderr),
		goexec.WithPassthrough(),
	).WithContext(runCtx)

	args := make([]string, 0, len(e.shell)+1)
	args = append(args, e.shell...)
	args = append(args, "exec "+command)

	result, err := runner.Run(args...)
	if err == nil {
		return result.ExitCode, nil
	}

	var exitErr *osexec.ExitError
	isExit := stderrors.As(err, &exitErr)
	if isExit && result != nil && result.ExitCode >= 0 {
		return result.ExitCode, nil
	}

	switch {
	case ctx.Err() != nil:
		return -1, ctx.Err()
	case stderrors.Is(runCtx.Err(), context.DeadlineExceeded):
		return -1, errors.Wrap(errors.ErrCodeTimeout, err, "process exceeded the timeout of %d seconds", timeout)
	}
	return -1, err
}
