//go:build !darwin || !cgo

package sysquery

// unsupportedPlatform reports every query as unavailable. The window server
// topology only exists on macOS.
type unsupportedPlatform struct{}

// NativePlatform returns the platform bridge for this OS
func NativePlatform() Platform {
	return unsupportedPlatform{}
}

func (unsupportedPlatform) DisplayIDs() ([]uint64, bool)              { return nil, false }
func (unsupportedPlatform) DisplayInfo(uint64) (DisplayInfo, bool)    { return DisplayInfo{}, false }
func (unsupportedPlatform) ActiveDisplayUUID() (string, bool)         { return "", false }
func (unsupportedPlatform) ManagedDisplaySpaces() (interface{}, bool) { return nil, false }
