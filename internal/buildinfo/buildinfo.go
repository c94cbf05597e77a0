// Package buildinfo carries the version stamped in by the linker:
//
//	go build -ldflags "-X pirdisplay/internal/buildinfo.Version=v1.2.0 -X pirdisplay/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
)

// Short returns a compact build identifier for the window title and logs.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}
