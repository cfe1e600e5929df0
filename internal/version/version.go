// Package version reports build metadata of the odoo2mod binary.
// Release builds inject the values with -ldflags; binaries installed with
// `go install` fall back to the module version and VCS stamps recorded in
// the build info.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	json "github.com/goccy/go-json"
)

// Set via -ldflags "-X github.com/hupe1980/odoo2mod/internal/version.version=...".
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// Dev is the version reported by builds without release metadata.
const Dev = "dev"

// Info holds the build metadata for the binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Current returns the build information of the running binary.
func Current() Info {
	return resolve(debug.ReadBuildInfo)
}

func resolve(readBuildInfo func() (*debug.BuildInfo, bool)) Info {
	info := Info{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := readBuildInfo(); ok && bi != nil {
		if info.Version == Dev {
			if v := bi.Main.Version; v != "" && v != "(devel)" {
				info.Version = v
			}
		}

		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.GitCommit == "none":
				info.GitCommit = s.Value
			case s.Key == "vcs.time" && info.BuildDate == "unknown":
				info.BuildDate = s.Value
			}
		}
	}

	info.GitCommit = shortCommit(info.GitCommit)

	return info
}

// IsDev reports whether the binary carries no release version.
func (i Info) IsDev() bool { return i.Version == Dev }

// String returns a single-line version string.
func (i Info) String() string {
	return fmt.Sprintf("odoo2mod %s (commit: %s, built: %s, %s %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// WriteTo writes the version info as aligned key/value lines.
func (i Info) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "odoo2mod %s\n  commit:   %s\n  built:    %s\n  go:       %s\n  platform: %s\n",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)

	return int64(n), err
}

// JSON returns the version info as indented JSON.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}

	return string(data), nil
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}

	return commit
}
