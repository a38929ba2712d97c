// Package term decides whether output goes to an interactive terminal.
package term

import (
	"os"
)

// ColorEnabled reports whether diagnostics written to f should be coloured.
// NO_COLOR disables colour whatever its value.
func ColorEnabled(f *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return IsTerminal(f.Fd())
}
