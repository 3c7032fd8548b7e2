// Package version reports how the nescore binary was built.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"nescore/internal/cartridge"
	"nescore/internal/statsview"
)

// Set with -ldflags "-X nescore/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Module paths of the optional front ends. Their presence in the build's
// dependency list tells which ones were compiled in.
const (
	ebitenModule = "github.com/hajimehoshi/ebiten/v2"
	otoModule    = "github.com/ebitengine/oto/v3"
)

// BuildInfo describes a binary
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	Modified  bool
	GoVersion string
	Platform  string

	Window  string // ebiten version, empty in headless builds
	Speaker string // oto version, empty in headless builds
	Stats   bool
	Mappers []uint8
}

// GetBuildInfo collects build information from the linker variables and
// the module data embedded by the Go toolchain.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Stats:     statsview.Available(),
		Mappers:   cartridge.SupportedMappers(),
	}

	embedded, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range embedded.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = setting.Value
			}
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	for _, dep := range embedded.Deps {
		switch dep.Path {
		case ebitenModule:
			info.Window = dep.Version
		case otoModule:
			info.Speaker = dep.Version
		}
	}
	return info
}

// GetVersion returns the release version, or dev-<commit> for untagged
// builds.
func GetVersion() string {
	info := GetBuildInfo()
	if info.Version != "dev" || info.GitCommit == "" {
		return info.Version
	}
	version := "dev-" + shortCommit(info.GitCommit)
	if info.Modified {
		version += "+dirty"
	}
	return version
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// PrintBuildInfo writes the build report shown by -version
func PrintBuildInfo(w io.Writer) {
	info := GetBuildInfo()

	fmt.Fprintf(w, "nescore %s\n", GetVersion())
	if info.BuildTime != "" {
		fmt.Fprintf(w, "Built:    %s\n", info.BuildTime)
	}
	fmt.Fprintf(w, "Go:       %s %s\n", info.GoVersion, info.Platform)
	fmt.Fprintf(w, "Window:   %s\n", orNone(info.Window))
	fmt.Fprintf(w, "Speaker:  %s\n", orNone(info.Speaker))
	fmt.Fprintf(w, "Stats:    %t\n", info.Stats)

	mappers := make([]string, len(info.Mappers))
	for i, id := range info.Mappers {
		mappers[i] = fmt.Sprint(id)
	}
	fmt.Fprintf(w, "Mappers:  %s\n", strings.Join(mappers, ", "))
}

func orNone(version string) string {
	if version == "" {
		return "not built in"
	}
	return version
}
