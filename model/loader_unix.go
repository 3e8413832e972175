//go:build !windows

package model

import "errors"

// Non-Windows filesystems take model paths as-is; the alternate spellings
// exist for Windows path-encoding quirks only.
func loadStrategies() []loadStrategy {
	return []loadStrategy{
		{name: "direct", load: loadDirect},
	}
}

func scheduleDeleteOnReboot(path string) error {
	return errors.New("deferred deletion is not supported on this platform")
}
