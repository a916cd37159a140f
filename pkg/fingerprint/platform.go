package fingerprint

import (
	"context"
	"strings"
)

// OS identifies the platform the client runs on.
type OS string

const (
	OSAndroid OS = "android"
	OSIOS     OS = "ios"
	OSOther   OS = "other"
)

// ParseOS maps a platform name to OS, defaulting to OSOther.
func ParseOS(s string) OS {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "android":
		return OSAndroid
	case "ios", "iphoneos", "ipados":
		return OSIOS
	default:
		return OSOther
	}
}

// AdvertisingIDKey is the fingerprint key holding the platform advertising
// id, or "" when the platform has none.
func (o OS) AdvertisingIDKey() string {
	switch o {
	case OSAndroid:
		return FieldGAID
	case OSIOS:
		return FieldIDFA
	default:
		return ""
	}
}

// SupportsInstallReferrer reports whether the platform has an install-referrer channel.
func (o OS) SupportsInstallReferrer() bool {
	return o == OSAndroid
}

// AdvertisingIDSource exposes the platform advertising identifier together
// with the user's tracking consent.
type AdvertisingIDSource interface {
	// TrackingAllowed reports whether the user permits ad tracking
	// (limit-ad-tracking off on Android, ATT authorized on iOS).
	TrackingAllowed(ctx context.Context) (bool, error)
	AdvertisingID(ctx context.Context) (string, error)
}

// zeroAdvertisingID is what platforms return when tracking is limited.
const zeroAdvertisingID = "00000000-0000-0000-0000-000000000000"
