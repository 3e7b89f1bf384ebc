package main

import (
	"runtime/debug"
)

// set with -ldflags "-X main.app_ver=v1.2.3"
var app_ver string = ""

// app_version reports the module version for binaries built with go
// install, the ldflags version otherwise, and the vcs revision of a local
// build as the last resort.
func app_version() string {
	bi, ok := debug.ReadBuildInfo()
	if ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	if app_ver != "" {
		return app_ver
	}
	if ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				return "devel-" + s.Value[:12]
			}
		}
	}
	return "#UNAVAILABLE"
}
