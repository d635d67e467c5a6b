package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/aalvaropc/glimpse/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// String reports the ldflags values. A `go install`ed binary has no ldflags,
// so the module version and VCS stamp are used instead.
func String() string {
	version, commit, date := Version, Commit, Date
	if version == "dev" {
		if bi, ok := readBuildInfo(); ok {
			version, commit, date = fromBuildInfo(bi, version, commit, date)
		}
	}
	return fmt.Sprintf("glimpse %s (commit=%s, date=%s)", version, commit, date)
}

func fromBuildInfo(bi *debug.BuildInfo, version, commit, date string) (string, string, string) {
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) > 12 {
				commit = s.Value[:12]
			} else if s.Value != "" {
				commit = s.Value
			}
		case "vcs.time":
			if s.Value != "" {
				date = s.Value
			}
		}
	}
	return version, commit, date
}
