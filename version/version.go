package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// ClientName prefixes the User-Agent sent with every API request.
const ClientName = "BillingLogix API Client"

var (
	// Version is the library release, set with -ldflags for builds of blx.
	Version   = "1.0.0"
	GitCommit = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version"`
	IsDirty   bool   `json:"is_dirty"`
}

// UserAgent returns the User-Agent header value, e.g.
// "BillingLogix API Client v1.0.0".
func UserAgent() string {
	return fmt.Sprintf("%s v%s", ClientName, strings.TrimPrefix(Version, "v"))
}

// GetVersionInfo merges the link-time variables with the module build info.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = buildInfo.GoVersion
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = setting.Value
			}
		case "vcs.modified":
			info.IsDirty = setting.Value == "true"
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// GetFullVersion returns "1.0.0-abc1234-dirty" style strings.
func GetFullVersion() string {
	info := GetVersionInfo()
	parts := []string{info.Version}
	if info.GitCommit != "" {
		parts = append(parts, info.GitCommit)
	}
	if info.IsDirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}
