// Package cli implements the npm-bridge command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-npm-bridge/pkg/bridge"
	"github.com/matzehuels/composer-npm-bridge/pkg/buildinfo"
	"github.com/matzehuels/composer-npm-bridge/pkg/composer"
	"github.com/matzehuels/composer-npm-bridge/pkg/errors"
	"github.com/matzehuels/composer-npm-bridge/pkg/npm"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "npm-bridge"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Executor and Finder replace the npm collaborators. Nil means the
	// system shell and PATH lookup.
	Executor npm.ProcessExecutor
	Finder   npm.ExecutableFinder

	// Getenv reads the environment. Nil means os.Getenv.
	Getenv func(string) string

	flags globalFlags
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	workingDir string
	timeout    int
	optional   bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Run npm for Composer projects and their dependencies",
		Long: `npm-bridge runs npm for a Composer project and for every installed Composer
package that requires eloquent/composer-npm-bridge.

The root project gets "npm install" (or "npm update"), each dependant package
gets "npm install --production" in its install directory.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.flags.workingDir == "" {
				return nil
			}
			if err := os.Chdir(c.flags.workingDir); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "change to working directory %s", c.flags.workingDir)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.workingDir, "working-dir", "d", "", "use the given directory as the Composer project")
	pf.IntVar(&c.flags.timeout, "timeout", 0, "npm timeout in seconds, overriding composer.json and "+bridge.ConfigFile)
	pf.BoolVar(&c.flags.optional, "optional", false, "skip instead of failing when npm is not installed")

	root.AddCommand(c.installCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Bridge Factory
// =============================================================================

// session bundles what a command needs to act on the current project.
type session struct {
	project *composer.Project
	client  *npm.Client
	bridge  *bridge.Bridge
}

// newSession loads the project in the working directory and wires the npm
// client and bridge for it.
func (c *CLI) newSession(cmd *cobra.Command) (*session, error) {
	project, err := composer.Load(".")
	if err != nil {
		return nil, err
	}

	file, err := bridge.LoadFile(project.Dir)
	if err != nil {
		return nil, err
	}

	overrides, err := c.overrides(cmd)
	if err != nil {
		return nil, err
	}

	client := c.newClient(file)
	return &session{
		project: project,
		client:  client,
		bridge: bridge.New(client,
			bridge.WithLogger(c.Logger),
			bridge.WithProjectSettings(file),
			bridge.WithOverrides(overrides),
		),
	}, nil
}

// overrides merges the environment and explicitly set flags.
func (c *CLI) overrides(cmd *cobra.Command) (bridge.Settings, error) {
	s := bridge.EnvSettings(c.Getenv)

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		timeout := c.flags.timeout
		s.Timeout = &timeout
	}
	if flags.Changed("optional") {
		optional := c.flags.optional
		s.Optional = &optional
	}
	if err := s.Validate(); err != nil {
		return bridge.Settings{}, err
	}
	return s, nil
}

func (c *CLI) newClient(file bridge.Settings) *npm.Client {
	executor := c.Executor
	if executor == nil {
		executor = npm.NewShellExecutor()
	}
	finder := c.Finder
	if finder == nil {
		finder = npm.NewPathFinder(file.Executable)
	}
	return npm.NewClient(executor, finder, npm.WithLogger(c.Logger))
}
