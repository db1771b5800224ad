// Package version reports build metadata stamped at link time
package version

// BuildInfo holds version information about a mywallet binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information for the named binary.
// Set via -ldflags "-X 'mywallet/internal/core/version.version=v0.3.0'
// -X 'mywallet/internal/core/version.commit=abcd' -X 'mywallet/internal/core/version.date=2026-01-02'"
func Info(service string) BuildInfo {
	if service == "" {
		service = "mywallet"
	}
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
