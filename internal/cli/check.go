package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-npm-bridge/pkg/bridge"
	"github.com/matzehuels/composer-npm-bridge/pkg/errors"
	"github.com/matzehuels/composer-npm-bridge/pkg/npm"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that npm can be found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.newSession(cmd)
			if err != nil {
				return err
			}
			rootSettings, err := s.bridge.RootSettings(s.project)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printKeyValue(out, "project", s.project.Dir)
			if pkg, ok := s.project.Package(bridge.PackageName); ok && pkg.Version != "" {
				printKeyValue(out, "bridge", pkg.Version)
			}
			printKeyValue(out, "dependants", strconv.Itoa(len(bridge.Dependants(s.project))))
			if rootSettings.Timeout != nil {
				printKeyValue(out, "timeout", strconv.Itoa(*rootSettings.Timeout)+"s")
			}

			if path, ok := s.client.Path(); ok {
				printSuccess(out, "npm found at %s", path)
				return nil
			}

			if rootSettings.IsOptional() {
				printWarning(out, "npm not found, npm dependencies will be skipped")
				return nil
			}
			printError(out, "npm not found")
			printNextStep(out, "Install Node.js or point npm-bridge at npm", "executable = \"/path/to/bin\" in "+bridge.ConfigFile)
			return errors.New(errors.ErrCodeNpmNotFound, "unable to locate %s executable", npm.ExecutableName)
		},
	}
}
