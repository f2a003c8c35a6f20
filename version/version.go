// Package version holds the build version, set at link time with
//
//	-ldflags "-X github.com/pkt-cash/iriswallet/version.tag=$(git describe --tags --dirty)"
package version

import (
	"fmt"
	"regexp"
	"strings"
)

var tag = ""

var appMajor uint = 0
var appMinor uint = 0
var appPatch uint = 0
var version = "0.0.0-custom"
var custom = true
var prerelease = false
var dirty = false

var commitRe = regexp.MustCompile(`-[0-9]+-g[0-9a-f]{7,}`)

func init() {
	parse(tag)
}

// parse reads a git describe tag such as iriswallet-v0.4.1-3-gfa3ba767-dirty.
func parse(ver string) {
	appMajor, appMinor, appPatch = 0, 0, 0
	custom, prerelease, dirty = true, false, false
	version = "0.0.0-custom"
	if len(ver) == 0 {
		return
	}
	suffix := "-custom"
	if _, errr := fmt.Sscanf(ver, "iriswallet-v%d.%d.%d", &appMajor, &appMinor, &appPatch); errr == nil {
		suffix = ""
		custom = false
		if x := commitRe.FindString(ver); len(x) > 0 {
			suffix += "-" + x[strings.LastIndex(x, "-")+2:]
			prerelease = true
		}
		if strings.Contains(ver, "-dirty") {
			suffix += "-dirty"
			dirty = true
		}
	}
	version = fmt.Sprintf("%d.%d.%d%s", appMajor, appMinor, appPatch, suffix)
}

func IsCustom() bool {
	return custom
}

func IsDirty() bool {
	return dirty
}

func IsPrerelease() bool {
	return prerelease
}

func AppMajorVersion() uint {
	return appMajor
}
func AppMinorVersion() uint {
	return appMinor
}
func AppPatchVersion() uint {
	return appPatch
}

func Version() string {
	return version
}
