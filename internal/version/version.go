package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are set at build time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the application version.
func Version() string {
	if version != "dev" {
		return version
	}

	// Fall back to the VCS revision embedded by the toolchain.
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
				return setting.Value[:7]
			}
		}
	}

	if commit != "unknown" && len(commit) >= 7 {
		return commit[:7]
	}

	return "dev"
}

// UserAgent returns the user-agent string sent on outbound API requests.
func UserAgent() string {
	return fmt.Sprintf("tariffsentinel/%s", Version())
}
