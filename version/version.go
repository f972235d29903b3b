package version

import (
	"runtime"
	"runtime/debug"
	"time"
)

// Set with -ldflags "-X verdix/version.Version=... -X verdix/version.Commit=...".
// Unset values are filled from the embedded VCS stamp when available.
var (
	Version = "dev"
	Commit  = ""
	Built   = ""
)

var started = time.Now()

type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Built     string `json:"built,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Uptime    string `json:"uptime"`
}

func Get(service string) Info {
	info := Info{
		Service:   service,
		Version:   Version,
		Commit:    Commit,
		Built:     Built,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Uptime:    time.Since(started).Truncate(time.Second).String(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Built == "":
			info.Built = s.Value
		case s.Key == "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// Short is the version with an abbreviated commit, e.g. "dev+1a2b3c4".
func (i Info) Short() string {
	if len(i.Commit) >= 7 {
		return i.Version + "+" + i.Commit[:7]
	}
	return i.Version
}
