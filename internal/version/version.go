package version

import "regexp"

// Version is set from main.go at startup via ldflags.
var Version = "dev"

var semverRe = regexp.MustCompile(`^v?(\d+\.\d+\.\d+)$`)

// Tag returns the release tag for a clean semver build, e.g. v0.4.0.
// Snapshots, dirty trees and local builds report "dev".
func Tag() string {
	m := semverRe.FindStringSubmatch(Version)
	if m == nil {
		return "dev"
	}
	return "v" + m[1]
}
