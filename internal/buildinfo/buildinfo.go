package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Name is the operating system name reported by uname.
const Name = "NewTownOS"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags. When left unset the VCS revision
// recorded by the Go toolchain is used.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

var readBuildInfo = debug.ReadBuildInfo

// Short returns a compact build identifier for UI/logging.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if c := commit(); c != "" && c != "unknown" {
		return c
	}
	return "dev"
}

// Uname is the one line system description printed by the shell.
func Uname() string {
	return fmt.Sprintf("%s %s (commit %s, built %s) %s/%s %s",
		Name, Version, commit(), Date, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func commit() string {
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	bi, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return Commit
}
