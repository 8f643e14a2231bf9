// Package version reports the build the binary was produced from.
package version

import (
	"runtime/debug"
	"strings"
)

// Set at link time with -ldflags "-X cookbook/pkg/version.version=v1.2.3".
var version = ""

// Version returns the linked version, the module version, or the VCS revision,
// whichever is known first.
func Version() string {
	if version != "" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	var revision, modified string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		}
	}
	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if strings.EqualFold(modified, "true") {
		revision += "-dirty"
	}
	return revision
}
