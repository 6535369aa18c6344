// Package npm runs the Node package manager on behalf of a Composer project.
//
// The central type is [Client], a thin façade over two collaborators: an
// [ExecutableFinder] that resolves the npm binary and a [ProcessExecutor]
// that runs a shell command line and owns the execution timeout. Production
// implementations of both live here too ([PathFinder] and [ShellExecutor]);
// tests substitute fakes.
//
// # Invocation
//
// Every Install or Update call follows the same sequence:
//
//  1. Resolve npm. A missing executable fails with NPM_NOT_FOUND before
//     anything else happens.
//  2. When a directory is given, remember the current directory and change
//     into the target.
//  3. When a timeout override is configured, save the executor's timeout and
//     replace it with the override.
//  4. Run the quoted command line and collect the exit status.
//  5. Restore the timeout, then the directory.
//  6. Map a non-zero status to *errors.CommandFailedError.
//
// Restoration is deferred, so it also happens when the executor itself fails.
//
// # Command Lines
//
// Each token is single-quoted independently:
//
//	'/usr/bin/npm' 'install'
//	'/usr/bin/npm' 'install' '--production'
//	'/usr/bin/npm' 'update'
//
// # Concurrency
//
// The working directory is process-wide. A Client changes it for the
// duration of a call, so callers sharing a process must serialize calls.
package npm
