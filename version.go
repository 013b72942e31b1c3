package oi

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version information
const (
	Version     = "0.2.0"
	ReleaseName = "New Computer Update"
	ModulePath  = "github.com/openinterpreter/oi"
)

// Info contains version information
type Info struct {
	Version   string `json:"version"`
	Release   string `json:"release"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// ResolveVersion returns the installed module version, falling back to
// Version for development builds.
func ResolveVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	if bi.Main.Path == ModulePath && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

// GetVersion returns version information
func GetVersion() Info {
	return Info{
		Version:   ResolveVersion(),
		Release:   ReleaseName,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("Open Interpreter %s %s (%s %s)", i.Version, i.Release, i.GoVersion, i.Platform)
}
