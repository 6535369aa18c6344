package npm

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composer-npm-bridge/pkg/errors"
	"github.com/matzehuels/composer-npm-bridge/pkg/observability"
)

// ExecutableName is the logical program name handed to the finder.
const ExecutableName = "npm"

// ExecutableFinder resolves a logical program name to a filesystem path.
type ExecutableFinder interface {
	// Find returns the resolved path, or false when name cannot be found.
	Find(name string) (string, bool)
}

// ProcessExecutor runs shell command lines and owns the execution timeout
// that applies to them.
type ProcessExecutor interface {
	// Execute runs command and waits for it. The returned int is the exit
	// status. A non-nil error means the process did not run to completion.
	Execute(ctx context.Context, command string) (int, error)

	// Timeout returns the current execution timeout in seconds.
	Timeout() int

	// SetTimeout replaces the execution timeout. Values are passed through
	// unvalidated.
	SetTimeout(seconds int)
}

// Workdir bundles the directory primitives used to scope an invocation to a
// target directory.
type Workdir struct {
	Getwd func() (string, error)
	Chdir func(dir string) error
}

// OSWorkdir returns the Workdir backed by the process working directory.
func OSWorkdir() Workdir {
	return Workdir{Getwd: os.Getwd, Chdir: os.Chdir}
}

// Option configures a Client.
type Option func(*Client)

// WithWorkdir replaces the directory primitives.
func WithWorkdir(w Workdir) Option {
	return func(c *Client) {
		c.workdir = w
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client invokes npm install and npm update.
type Client struct {
	executor ProcessExecutor
	finder   ExecutableFinder
	workdir  Workdir
	logger   *log.Logger
	timeout  *int
}

// NewClient creates a Client around the given collaborators.
// Without WithWorkdir the process working directory is used.
func NewClient(executor ProcessExecutor, finder ExecutableFinder, opts ...Option) *Client {
	c := &Client{
		executor: executor,
		finder:   finder,
		workdir:  OSWorkdir(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTimeout sets the timeout override, in seconds, applied to the executor
// for the duration of each subsequent invocation.
func (c *Client) SetTimeout(seconds int) {
	c.timeout = &seconds
}

// ClearTimeout removes the timeout override. The executor's timeout is then
// left untouched by invocations.
func (c *Client) ClearTimeout() {
	c.timeout = nil
}

// Valid reports whether the npm executable can be found.
func (c *Client) Valid() bool {
	_, ok := c.finder.Find(ExecutableName)
	return ok
}

// Path returns the resolved npm executable, if any.
func (c *Client) Path() (string, bool) {
	return c.finder.Find(ExecutableName)
}

// Install runs npm install in dir, or in the current directory when dir is
// empty. Unless devMode is set, --production is appended so that
// devDependencies are skipped.
func (c *Client) Install(ctx context.Context, dir string, devMode bool) error {
	args := []string{"install"}
	if !devMode {
		args = append(args, "--production")
	}
	return c.run(ctx, dir, args...)
}

// Update runs npm update in dir, or in the current directory when dir is empty.
func (c *Client) Update(ctx context.Context, dir string) error {
	return c.run(ctx, dir, "update")
}

func (c *Client) run(ctx context.Context, dir string, args ...string) (err error) {
	path, ok := c.finder.Find(ExecutableName)
	if !ok {
		return errors.New(errors.ErrCodeNpmNotFound, "unable to locate npm executable")
	}

	if dir != "" {
		restore, derr := c.enterDir(dir)
		if derr != nil {
			return derr
		}
		defer func() {
			if rerr := restore(); rerr != nil && err == nil {
				err = rerr
			}
		}()
	}

	if c.timeout != nil {
		restore := c.overrideTimeout(*c.timeout)
		defer restore()
	}

	command := BuildCommand(path, args...)
	action := args[0]

	c.logger.Debug("running npm", "command", command, "dir", dir)
	observability.Npm().OnCommandStart(ctx, action, dir)
	start := time.Now()

	status, err := c.executor.Execute(ctx, command)
	if err != nil {
		err = c.executionError(ctx, command, err)
		observability.Npm().OnCommandComplete(ctx, action, dir, -1, time.Since(start), err)
		return err
	}

	if status != 0 {
		err = &errors.CommandFailedError{Command: command, ExitCode: status}
	}
	observability.Npm().OnCommandComplete(ctx, action, dir, status, time.Since(start), err)
	c.logger.Debug("npm finished", "status", status, "elapsed", time.Since(start).Round(time.Millisecond))
	return err
}

// enterDir changes into dir and returns the function that changes back.
func (c *Client) enterDir(dir string) (func() error, error) {
	cwd, err := c.workdir.Getwd()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "determine working directory")
	}
	if err := c.workdir.Chdir(dir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "change directory to %s", dir)
	}
	return func() error {
		if err := c.workdir.Chdir(cwd); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "restore working directory %s", cwd)
		}
		return nil
	}, nil
}

// overrideTimeout applies seconds to the executor and returns the function
// that puts the previous value back.
func (c *Client) overrideTimeout(seconds int) func() {
	previous := c.executor.Timeout()
	c.executor.SetTimeout(seconds)
	return func() {
		c.executor.SetTimeout(previous)
	}
}

func (c *Client) executionError(ctx context.Context, command string, err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	switch ctx.Err() {
	case context.Canceled:
		return errors.Wrap(errors.ErrCodeCanceled, err, "npm interrupted: %s", command)
	case context.DeadlineExceeded:
		return errors.Wrap(errors.ErrCodeTimeout, err, "npm timed out: %s", command)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "execute %s", command)
}
