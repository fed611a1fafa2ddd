// Package exitcode provides standardized exit codes for scrubpress
package exitcode

// Exit codes for the scrubpress CLI. The first three are part of the
// command-surface contract; wrapper scripts and hooks depend on them.
const (
	Success           = 0
	ValidationFailure = 1
	ConfigError       = 2
	IOError           = 3
	PublishError      = 4
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case ValidationFailure:
		return "Validation failure"
	case ConfigError:
		return "Configuration error"
	case IOError:
		return "I/O error"
	case PublishError:
		return "Publish error"
	default:
		return "Unknown error"
	}
}
