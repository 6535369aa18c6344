// Package bridge runs npm for a Composer project and its dependencies.
//
// A package takes part when it requires the bridge package
// (eloquent/composer-npm-bridge). The root project is handled first, followed
// by every participating dependency in installed order:
//
//   - install runs "npm install" for the root, adding --production when dev
//     requirements are excluded, and "npm install --production" for each
//     dependency.
//   - update runs "npm update" for the root and installs dependencies exactly
//     as install does.
//
// # Settings
//
// Each package may carry an "npm-bridge" section in its composer.json extra:
//
//	"extra": {
//	    "npm-bridge": {"timeout": 900, "optional": true}
//	}
//
// The root project additionally honours npm-bridge.toml in its directory,
// and every package honours the COMPOSER_NPM_BRIDGE_DISABLE environment
// variable and explicit overrides supplied by the caller (in that order of
// precedence).
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composer-npm-bridge/pkg/composer"
	"github.com/matzehuels/composer-npm-bridge/pkg/observability"
)

// PackageName is the Composer package whose presence in a package's
// requirements opts that package into the bridge.
const PackageName = "eloquent/composer-npm-bridge"

// NpmClient is the npm façade the bridge drives. *npm.Client implements it.
type NpmClient interface {
	Valid() bool
	SetTimeout(seconds int)
	ClearTimeout()
	Install(ctx context.Context, dir string, devMode bool) error
	Update(ctx context.Context, dir string) error
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger progress is reported to.
func WithLogger(l *log.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithProjectSettings sets settings that apply to the root project only,
// above its composer.json extra. Typically the contents of ConfigFile.
func WithProjectSettings(s Settings) Option {
	return func(b *Bridge) {
		b.project = s
	}
}

// WithOverrides sets settings that take precedence for every package.
func WithOverrides(s Settings) Option {
	return func(b *Bridge) {
		b.overrides = s
	}
}

// Bridge runs npm across a Composer project.
type Bridge struct {
	client    NpmClient
	logger    *log.Logger
	project   Settings
	overrides Settings
}

// New creates a Bridge driving client.
func New(client NpmClient, opts ...Option) *Bridge {
	b := &Bridge{
		client: client,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsDependant reports whether pkg requires the bridge. Development
// requirements count only when includeDev is set.
func IsDependant(pkg *composer.Package, includeDev bool) bool {
	return pkg.Requires(PackageName, includeDev)
}

// Dependants returns the installed packages that require the bridge, in
// installed order. The bridge package itself is never included.
func Dependants(project *composer.Project) []*composer.Package {
	var out []*composer.Package
	seen := make(map[string]bool)
	for _, pkg := range project.Packages {
		if pkg.Name == PackageName || seen[pkg.Name] {
			continue
		}
		if IsDependant(pkg, false) {
			seen[pkg.Name] = true
			out = append(out, pkg)
		}
	}
	return out
}

// Install runs npm install for the root project and for every dependant
// package. devMode controls whether the root project's devDependencies are
// installed; dependencies are always installed in production mode.
func (b *Bridge) Install(ctx context.Context, project *composer.Project, devMode bool) error {
	plan, err := b.Plan(project, ActionInstall, devMode)
	if err != nil {
		return err
	}
	return b.execute(ctx, plan)
}

// Update runs npm update for the root project and npm install for every
// dependant package.
func (b *Bridge) Update(ctx context.Context, project *composer.Project) error {
	plan, err := b.Plan(project, ActionUpdate, true)
	if err != nil {
		return err
	}
	return b.execute(ctx, plan)
}

func (b *Bridge) execute(ctx context.Context, plan *Plan) error {
	if plan.Disabled {
		b.logger.Warn("npm bridge is disabled, skipping")
		observability.Bridge().OnPackageSkipped(ctx, plan.RootName, "disabled")
		return nil
	}

	b.logger.Infof("%s npm dependencies for root project", plan.Action.verb())
	if plan.Root != nil {
		if err := b.runTarget(ctx, *plan.Root); err != nil {
			return err
		}
	} else {
		b.logger.Infof("Nothing to %s", plan.Action)
	}

	b.logger.Info("Installing npm dependencies for Composer dependencies")
	if len(plan.Vendors) == 0 {
		b.logger.Info("Nothing to install")
		return nil
	}
	for _, t := range plan.Vendors {
		if err := b.runTarget(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bridge) runTarget(ctx context.Context, t Target) error {
	name := t.Name()
	if t.Settings.IsDisabled() {
		b.logger.Info("npm disabled, skipping", "package", name)
		observability.Bridge().OnPackageSkipped(ctx, name, "disabled")
		return nil
	}
	if t.Settings.IsOptional() && !b.client.Valid() {
		b.logger.Warn("npm not found, skipping optional npm dependencies", "package", name)
		observability.Bridge().OnPackageSkipped(ctx, name, "npm unavailable")
		return nil
	}

	if !t.Root {
		b.logger.Infof("%s npm dependencies for %s", t.Action.verb(), name)
	}

	if t.Settings.Timeout != nil {
		b.client.SetTimeout(*t.Settings.Timeout)
	} else {
		b.client.ClearTimeout()
	}

	observability.Bridge().OnPackageStart(ctx, name, string(t.Action))
	start := time.Now()

	var err error
	switch t.Action {
	case ActionUpdate:
		err = b.client.Update(ctx, t.Path)
	default:
		err = b.client.Install(ctx, t.Path, t.DevMode)
	}

	observability.Bridge().OnPackageComplete(ctx, name, string(t.Action), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("npm %s for %s: %w", t.Action, name, err)
	}
	return nil
}
