package version

import (
	"fmt"
	"runtime/debug"
)

var (
	tag       = "devel"
	dirty     bool
	buildInfo string
)

// Version is the module version followed by the target platform.
// Binaries built from a modified checkout get a "-dirty" suffix.
func Version() string {
	v := tag
	if dirty {
		v += "-dirty"
	}
	return fmt.Sprintf("%s %s", v, buildInfo)
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		tag = info.Main.Version
	}

	var goos, goarch, revision string
	for _, s := range info.Settings {
		switch s.Key {
		case "GOOS":
			goos = s.Value
		case "GOARCH":
			goarch = s.Value
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if tag == "devel" && len(revision) >= 7 {
		tag = revision[:7]
	}

	buildInfo = fmt.Sprintf("%s/%s", goos, goarch)
}
