package service

import "strings"

// VersionInfo is the build identity stamped into the binary via ldflags.
type VersionInfo struct {
	Version   string
	GitCommit string
	GitDate   string
	Meta      string
}

// String joins the non-empty parts with dashes, shortening the commit to 8 chars.
func (v VersionInfo) String() string {
	commit := v.GitCommit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	parts := []string{v.Version}
	for _, p := range []string{commit, v.GitDate, v.Meta} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}

func FormatVersion(version, gitCommit, gitDate, meta string) string {
	return VersionInfo{Version: version, GitCommit: gitCommit, GitDate: gitDate, Meta: meta}.String()
}
