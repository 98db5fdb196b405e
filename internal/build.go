package internal

import "runtime/debug"

var (
	AppName    = "recordctl"
	AppVersion = "devel"
	ModName    string

	BuildInfo *debug.BuildInfo
)

func init() {
	BuildInfo, _ = debug.ReadBuildInfo()
	if BuildInfo != nil {
		ModName = BuildInfo.Main.Path
	}
}
