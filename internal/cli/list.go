package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-npm-bridge/pkg/bridge"
	"github.com/matzehuels/composer-npm-bridge/pkg/npm"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var (
		noDev  bool
		update bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show which npm commands install or update would run",
		Long: `List the npm invocations the bridge would perform, without running npm.

Each entry shows the Composer package, the npm command line, the directory it
runs in and what that directory's package.json declares.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.newSession(cmd)
			if err != nil {
				return err
			}

			action, devMode := bridge.ActionInstall, !noDev
			if update {
				action, devMode = bridge.ActionUpdate, true
			}

			plan, err := s.bridge.Plan(s.project, action, devMode)
			if err != nil {
				return err
			}

			executable, ok := s.client.Path()
			if !ok {
				executable = npm.ExecutableName
			}
			printPlan(cmd.OutOrStdout(), plan, executable)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDev, "no-dev", false, "plan as install --no-dev")
	cmd.Flags().BoolVar(&update, "update", false, "plan as update")
	return cmd
}

func printPlan(w io.Writer, plan *bridge.Plan, executable string) {
	title := fmt.Sprintf("npm %s plan", plan.Action)
	if plan.RootName != "" {
		title += " for " + plan.RootName
	}
	printTitle(w, title)

	if plan.Disabled {
		printWarning(w, "npm bridge is disabled (%s)", bridge.DisableEnv)
		return
	}

	targets := plan.Targets()
	if len(targets) == 0 {
		printInfo(w, "Nothing to %s", plan.Action)
		return
	}

	for _, t := range targets {
		printTarget(w, t.Name(), npm.BuildCommand(executable, targetArgs(t)...), t.Path)
		for _, note := range targetNotes(t) {
			printDetail(w, "  %s", note)
		}
	}
}

// targetArgs mirrors the arguments npm.Client passes for t.
func targetArgs(t bridge.Target) []string {
	if t.Action == bridge.ActionUpdate {
		return []string{"update"}
	}
	if t.DevMode {
		return []string{"install"}
	}
	return []string{"install", "--production"}
}

func targetNotes(t bridge.Target) []string {
	var notes []string
	switch {
	case t.Settings.IsDisabled():
		notes = append(notes, "disabled, will be skipped")
	case t.Settings.IsOptional():
		notes = append(notes, "optional, skipped when npm is missing")
	}
	if t.Package.Dev {
		notes = append(notes, "installed for require-dev")
	}
	if t.Settings.Timeout != nil {
		notes = append(notes, fmt.Sprintf("timeout %ds", *t.Settings.Timeout))
	}

	m, err := t.Manifest()
	switch {
	case err != nil:
		notes = append(notes, "package.json unreadable: "+err.Error())
	case !m.Exists:
		notes = append(notes, "no package.json")
	default:
		notes = append(notes, fmt.Sprintf("%d dependencies", m.DependencyCount(t.DevMode || t.Action == bridge.ActionUpdate)))
		if m.Private {
			notes = append(notes, "private package")
		}
		notes = append(notes, m.Warnings...)
	}
	return notes
}
