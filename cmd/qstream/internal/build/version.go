// Package build holds build-time version information injected via ldflags.
//
// To inject values at build time:
//
//	go build -ldflags "-X github.com/solarisin/core/cmd/qstream/internal/build.Version=v1.0.0 \
//	  -X github.com/solarisin/core/cmd/qstream/internal/build.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/solarisin/core/cmd/qstream/internal/build.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// When Version is not injected it falls back to the main module version
// recorded by the Go toolchain.
package build

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/solarisin/core/pkg/logx"
)

// These variables are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the structured form of the build information.
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	Go      string `json:"go" yaml:"go"`
	OS      string `json:"os" yaml:"os"`
	Arch    string `json:"arch" yaml:"arch"`
}

// Get returns the build information of the running binary.
func Get() Info {
	v := Version
	if v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			if mv := logx.FormatVersion(bi.Main.Version, false); mv != "" {
				v = mv
			}
		}
	}
	return Info{
		Version: v,
		Commit:  Commit,
		Date:    Date,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// String returns a formatted version string.
func String() string {
	i := Get()
	return fmt.Sprintf("qstream %s (%s) built %s %s/%s",
		i.Version, i.Commit, i.Date, i.OS, i.Arch)
}
