// Package buildinfo carries version metadata stamped into the teller binary.
package buildinfo

// Set with -ldflags "-X github.com/cleared-dev/teller/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
