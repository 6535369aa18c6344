// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about npm invocations and bridge runs.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by the library packages, so the
// library stays free of any particular metrics or tracing backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetNpmHooks(&myNpmHooks{})
//	    observability.SetBridgeHooks(&myBridgeHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Npm().OnCommandStart(ctx, "install", dir)
//	// ... run npm ...
//	observability.Npm().OnCommandComplete(ctx, "install", dir, exitCode, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Npm Hooks
// =============================================================================

// NpmHooks receives events from the npm client.
type NpmHooks interface {
	// OnCommandStart records an npm invocation about to run.
	// dir is empty when npm runs in the current directory.
	OnCommandStart(ctx context.Context, action, dir string)

	// OnCommandComplete records a finished npm invocation.
	// exitCode is -1 when the process never reported a status.
	OnCommandComplete(ctx context.Context, action, dir string, exitCode int, duration time.Duration, err error)
}

// =============================================================================
// Bridge Hooks
// =============================================================================

// BridgeHooks receives events from the bridge orchestrator.
type BridgeHooks interface {
	// OnPackageStart records that npm is about to run for a Composer package.
	OnPackageStart(ctx context.Context, pkg, action string)

	// OnPackageSkipped records a package skipped because npm is unavailable
	// and optional, or because the bridge is disabled.
	OnPackageSkipped(ctx context.Context, pkg, reason string)

	// OnPackageComplete records the outcome of npm for a Composer package.
	OnPackageComplete(ctx context.Context, pkg, action string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopNpmHooks is a no-op implementation of NpmHooks.
type NoopNpmHooks struct{}

func (NoopNpmHooks) OnCommandStart(context.Context, string, string) {}
func (NoopNpmHooks) OnCommandComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopBridgeHooks is a no-op implementation of BridgeHooks.
type NoopBridgeHooks struct{}

func (NoopBridgeHooks) OnPackageStart(context.Context, string, string)   {}
func (NoopBridgeHooks) OnPackageSkipped(context.Context, string, string) {}
func (NoopBridgeHooks) OnPackageComplete(context.Context, string, string, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	npmHooks    NpmHooks    = NoopNpmHooks{}
	bridgeHooks BridgeHooks = NoopBridgeHooks{}
	hooksMu     sync.RWMutex
)

// SetNpmHooks registers custom npm hooks.
// This should be called once at application startup before any npm invocation.
func SetNpmHooks(h NpmHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		npmHooks = h
	}
}

// SetBridgeHooks registers custom bridge hooks.
// This should be called once at application startup before any bridge run.
func SetBridgeHooks(h BridgeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		bridgeHooks = h
	}
}

// Npm returns the registered npm hooks.
func Npm() NpmHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return npmHooks
}

// Bridge returns the registered bridge hooks.
func Bridge() BridgeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return bridgeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	npmHooks = NoopNpmHooks{}
	bridgeHooks = NoopBridgeHooks{}
}
