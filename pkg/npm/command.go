package npm

import "strings"

// Quote wraps s in single quotes for a POSIX shell. Embedded single quotes
// are closed, escaped and reopened ('\'').
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// BuildCommand quotes the executable and each argument individually and joins
// them with spaces.
func BuildCommand(executable string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, Quote(executable))
	for _, arg := range args {
		parts = append(parts, Quote(arg))
	}
	return strings.Join(parts, " ")
}
