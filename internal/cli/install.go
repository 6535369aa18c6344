package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-npm-bridge/pkg/bridge"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var noDev bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install npm dependencies for the project and its Composer dependencies",
		Long: `Install npm dependencies for the root project and for every installed
Composer package that requires eloquent/composer-npm-bridge.

The root project receives "npm install", or "npm install --production" with
--no-dev. Composer dependencies always receive "npm install --production".`,
		Example: `  # Install everything, including the root's devDependencies
  npm-bridge install

  # Production deploy
  npm-bridge install --no-dev --timeout 900`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBridge(cmd, bridge.ActionInstall, !noDev)
		},
	}

	cmd.Flags().BoolVar(&noDev, "no-dev", false, "skip the root project's devDependencies")
	return cmd
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update the project's npm dependencies and install those of Composer dependencies",
		Long: `Run "npm update" for the root project, then "npm install --production" for
every installed Composer package that requires eloquent/composer-npm-bridge.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBridge(cmd, bridge.ActionUpdate, true)
		},
	}
}

func (c *CLI) runBridge(cmd *cobra.Command, action bridge.Action, devMode bool) error {
	s, err := c.newSession(cmd)
	if err != nil {
		return err
	}

	ctx := withLogger(cmd.Context(), c.Logger)
	prog := newProgress(c.Logger)

	switch action {
	case bridge.ActionUpdate:
		err = s.bridge.Update(ctx, s.project)
	default:
		err = s.bridge.Install(ctx, s.project, devMode)
	}
	if err != nil {
		return err
	}

	prog.done("npm bridge finished")
	return nil
}
