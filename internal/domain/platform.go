// internal/domain/platform.go
package domain

import "strings"

// Platform is the enumerated sale platform stored on sales and inventory
// listings. Free-text input is normalized through NormalizePlatform.
type Platform string

const (
	PlatformEbay   Platform = "ebay"
	PlatformEtsy   Platform = "etsy"
	PlatformVinted Platform = "vinted"
	PlatformNone   Platform = "none"
	PlatformOther  Platform = "other"
)

// NormalizePlatform maps free-text platform input into the enum. Empty input
// and the "no platform" spellings collapse to none; anything unrecognized
// becomes other.
func NormalizePlatform(val string) Platform {
	v := strings.ToLower(strings.TrimSpace(val))
	switch v {
	case "", "none", "no platform", "no sale platform":
		return PlatformNone
	case "ebay":
		return PlatformEbay
	case "etsy":
		return PlatformEtsy
	case "vinted":
		return PlatformVinted
	default:
		return PlatformOther
	}
}
