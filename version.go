package translator

import (
	"runtime/debug"
	"sync"
)

// Name and version of the tool. GitCommit and BuildDate may be set with
// ldflags:
//
//	go build -ldflags "-X github.com/ashokgit/Ultimate-Translator-sub000.GitCommit=$(git rev-parse HEAD)"
//
// Without them the VCS revision recorded by the Go toolchain is used.
const (
	Name        = "ultimate-translator"
	Description = "Field-aware JSON document translation"
	Version     = "0.4.0"
)

var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var vcsRevision = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	rev, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
})

// FullVersion returns Version with the short commit appended when known,
// e.g. "0.4.0+1a2b3c4".
func FullVersion() string {
	commit := GitCommit
	if commit == "unknown" || commit == "" {
		commit = vcsRevision()
	}
	if commit == "" {
		return Version
	}
	if len(commit) > 7 && commit[7] != '-' {
		suffix := ""
		if n := len(commit); n > 6 && commit[n-6:] == "-dirty" {
			suffix = "-dirty"
		}
		commit = commit[:7] + suffix
	}
	return Version + "+" + commit
}

// UserAgent returns the User-Agent sent to remote providers and sources.
func UserAgent() string {
	return Name + "/" + Version
}
