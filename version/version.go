package version

import (
	"runtime/debug"
	"strings"
)

// The version can be set at build time, e.g.:
// go build -ldflags "-X github.com/davidfrivas/RandomWalkSeq/version.Version=$(git describe --dirty)"

var Version string

const Name = "RandomWalkSeq"

var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value[:min(7, len(setting.Value))]
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision != "" && modified {
		return revision + "-dirty"
	}
	return revision
}()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	return Hash
}()

// Title returns the window or plugin title for the named tool, with the
// version when one is known.
func Title(tool string) string {
	parts := []string{Name}
	if tool != "" {
		parts = append(parts, tool)
	}
	if VersionOrHash != "" {
		parts = append(parts, VersionOrHash)
	}
	return strings.Join(parts, " ")
}
