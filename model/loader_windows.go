//go:build windows

package model

import "golang.org/x/sys/windows"

// Windows chokes on model paths containing non-ASCII or otherwise special
// characters, so try progressively safer spellings of the same file.
func loadStrategies() []loadStrategy {
	return []loadStrategy{
		{name: "direct", load: loadDirect},
		{name: "relative", load: loadRelative},
		{name: "temp-copy", load: loadTempCopy},
	}
}

// scheduleDeleteOnReboot asks the OS to delete a file at the next restart.
// Used for temporary model copies that something still holds open.
func scheduleDeleteOnReboot(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	return windows.MoveFileEx(p, nil, windows.MOVEFILE_DELAY_UNTIL_REBOOT)
}
