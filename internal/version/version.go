// Package version carries the build identity stamped into release binaries.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const devVersion = "3.0.2-dev"

// Overridden via -ldflags on release builds; dev builds fall back to the
// VCS metadata Go embeds.
var (
	AppName   = "LinuxCloudSync"
	Version   = devVersion
	Revision  = "HEAD"
	BuildDate = ""
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		resolve(info)
	}
	if BuildDate == "" {
		BuildDate = time.Now().UTC().Format(time.RFC3339)
	}
}

// resolve fills in whatever ldflags left at defaults from the embedded
// module and VCS build settings.
func resolve(info *debug.BuildInfo) {
	if Version == devVersion || Version == "" {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			Version = strings.TrimPrefix(v, "v")
		}
	}

	var revision, modified, vcsTime string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}

	if (Revision == "HEAD" || Revision == "") && revision != "" {
		if modified == "true" {
			revision += "-dirty"
		}
		Revision = revision
	}
	if BuildDate == "" {
		BuildDate = vcsTime
	}
}

// Short returns `3.0.2 (5e23a4)`.
func Short() string {
	return fmt.Sprintf("%s (%s)", Version, Revision)
}

// ShortWithApp returns `LinuxCloudSync 3.0.2 (5e23a4)`.
func ShortWithApp() string {
	return fmt.Sprintf("%s %s", AppName, Short())
}

// Detailed returns the version plus toolchain, platform and build date.
func Detailed() string {
	return fmt.Sprintf("%s (%s; %s; %s/%s; %s)", Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH, BuildDate)
}
