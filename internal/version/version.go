package version

import (
	"os/exec"
	"runtime"
	"strings"
)

// Version will be set during build time via ldflags, fallback to Git
var Version = "dev"

// BuildTime will be set during build time via ldflags
var BuildTime = "unknown"

// GitCommit will be set during build time via ldflags
var GitCommit = "unknown"

// Info is the build metadata reported by /api/health
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get returns build metadata, omitting fields left unset by ldflags
func Get() Info {
	info := Info{
		Version:   GetVersionInfo(),
		GoVersion: runtime.Version(),
	}
	if BuildTime != "unknown" {
		info.BuildTime = BuildTime
	}
	if GitCommit != "unknown" {
		info.GitCommit = GitCommit
	}
	return info
}

// GetVersionInfo returns formatted version information
func GetVersionInfo() string {
	if Version == "dev" {
		if gitVersion := getGitVersion(); gitVersion != "" {
			return gitVersion
		}
	}
	return Version
}

// GetFullVersionInfo returns detailed version information
func GetFullVersionInfo() string {
	info := Get()
	switch {
	case info.BuildTime != "" && info.GitCommit != "":
		return info.Version + " (built " + info.BuildTime + ", commit " + info.GitCommit + ", " + info.GoVersion + ")"
	case info.GitCommit != "":
		return info.Version + " (commit " + info.GitCommit + ", " + info.GoVersion + ")"
	}
	return info.Version + " (" + info.GoVersion + ")"
}

// getGitVersion attempts to get version from Git tags
func getGitVersion() string {
	cmd := exec.Command("git", "describe", "--tags", "--abbrev=0")
	if output, err := cmd.Output(); err == nil {
		version := strings.TrimSpace(string(output))
		if version != "" {
			return strings.TrimPrefix(version, "v")
		}
	}

	cmd = exec.Command("git", "rev-parse", "--short", "HEAD")
	if output, err := cmd.Output(); err == nil {
		commit := strings.TrimSpace(string(output))
		if commit != "" {
			return "dev-" + commit
		}
	}

	return "dev-unknown"
}
