// Package version holds build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/gotrs-io/uismoke/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns "<version> (<commit>)".
func String() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}

// Full adds the build date and Go toolchain.
func Full() string {
	return fmt.Sprintf("%s (%s) built %s with %s", Version, GitCommit, BuildDate, runtime.Version())
}
