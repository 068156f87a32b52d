// Package version exposes build metadata stamped in at link time.
package version

import (
	"fmt"
	"runtime"
)

// Overridden via -ldflags at release build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the full version line shown by `benedict version`.
func String() string {
	return fmt.Sprintf("benedict %s (commit=%s, date=%s, go=%s)", Version, Commit, Date, runtime.Version())
}
