// Package version holds the build-time version variables for the costwatch
// binary. Release builds set them with -ldflags "-X".
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns the text printed by costwatch version.
func Info() string {
	return fmt.Sprintf(
		"costwatch version %s\ncommit: %s\nbuilt: %s\n",
		Version,
		Commit,
		Date,
	)
}
