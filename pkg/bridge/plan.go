package bridge

import (
	"fmt"

	"github.com/matzehuels/composer-npm-bridge/pkg/composer"
	"github.com/matzehuels/composer-npm-bridge/pkg/packagejson"
)

// Action is the npm command a target runs.
type Action string

const (
	ActionInstall Action = "install"
	ActionUpdate  Action = "update"
)

func (a Action) verb() string {
	if a == ActionUpdate {
		return "Updating"
	}
	return "Installing"
}

// Target is one npm invocation the bridge will perform.
type Target struct {
	// Package is the Composer package npm runs for.
	Package *composer.Package

	// Root is set for the root project.
	Root bool

	// Path is the absolute directory npm runs in. The client changes into it
	// for the call, so the process working directory does not matter.
	Path string

	Action   Action
	DevMode  bool
	Settings Settings
}

// Name returns the package name, or "root project" for an unnamed root.
func (t Target) Name() string {
	if t.Package.Name != "" {
		return t.Package.Name
	}
	if t.Root {
		return "root project"
	}
	return t.Path
}

// Manifest reads the package.json npm will work on.
func (t Target) Manifest() (*packagejson.Manifest, error) {
	return packagejson.Read(t.Path)
}

// Plan lists what a bridge run will do, without running anything.
type Plan struct {
	Action   Action
	RootName string

	// Disabled is set when the root settings disable the bridge as a whole.
	Disabled bool

	// Root is nil when the root project does not require the bridge.
	Root *Target

	// Vendors holds one production install per dependant package.
	Vendors []Target
}

// Targets returns the root target, if any, followed by the vendor targets.
func (p *Plan) Targets() []Target {
	var out []Target
	if p.Root != nil {
		out = append(out, *p.Root)
	}
	return append(out, p.Vendors...)
}

// RootSettings resolves the effective settings of the root project.
func (b *Bridge) RootSettings(project *composer.Project) (Settings, error) {
	s, err := PackageSettings(project.Root)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", composer.ManifestFile, err)
	}
	return s.Merge(b.project).Merge(b.overrides), nil
}

// Plan resolves the targets of action over project. devMode applies to the
// root install only; update always includes dev requirements when deciding
// whether the root participates.
func (b *Bridge) Plan(project *composer.Project, action Action, devMode bool) (*Plan, error) {
	rootSettings, err := b.RootSettings(project)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Action:   action,
		RootName: project.Root.Name,
		Disabled: rootSettings.IsDisabled(),
	}
	if plan.Disabled {
		return plan, nil
	}

	includeDev := devMode || action == ActionUpdate
	if IsDependant(project.Root, includeDev) {
		plan.Root = &Target{
			Package:  project.Root,
			Root:     true,
			Path:     project.Dir,
			Action:   action,
			DevMode:  devMode,
			Settings: rootSettings,
		}
	}

	for _, pkg := range Dependants(project) {
		s, err := PackageSettings(pkg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pkg.Name, err)
		}
		plan.Vendors = append(plan.Vendors, Target{
			Package:  pkg,
			Path:     pkg.InstallPath,
			Action:   ActionInstall,
			DevMode:  false,
			Settings: s.Merge(b.overrides),
		})
	}
	return plan, nil
}
