package fingerprint

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Attribute keys sent to the backend.
const (
	FieldAndroidID       = "android_id"
	FieldAPILevel        = "api_level"
	FieldApplicationName = "application_name"
	FieldBaseOS          = "base_os"
	FieldBuildID         = "build_id"
	FieldBrand           = "brand"
	FieldBuildNumber     = "build_number"
	FieldBundleID        = "bundle_id"
	FieldCarrier         = "carrier"
	FieldConnectivity    = "connectivity"
	FieldDevice          = "device"
	FieldDeviceID        = "device_id"
	FieldDeviceDisplay   = "device_display"
	FieldDeviceType      = "device_type"
	FieldDeviceName      = "device_name"
	FieldDeviceToken     = "device_token"
	FieldDeviceIP        = "device_ip"
	FieldInstallRef      = "install_ref"
	FieldLocale          = "locale"
	FieldManufacturer    = "manufacturer"
	FieldSystemVersion   = "system_version"
	FieldVersion         = "version"
	FieldUserAgent       = "user_agent"
	FieldGAID            = "gaid"
	FieldIDFA            = "idfa"
)

// Static declares a field with a fixed value.
func Static(name string, v any) Field {
	return Field{
		Name: name,
		Get:  func(context.Context) (any, error) { return v, nil },
	}
}

// FromMap declares one static field per entry, ordered by key.
func FromMap(values map[string]any) []Field {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Static(k, values[k]))
	}
	return fields
}

// StringField declares a field backed by a string accessor. Empty strings
// are reported as nil.
func StringField(name string, get func(ctx context.Context) (string, error)) Field {
	return Field{
		Name: name,
		Get: func(ctx context.Context) (any, error) {
			s, err := get(ctx)
			if err != nil || s == "" {
				return nil, err
			}
			return s, nil
		},
	}
}

// LocaleField declares the device locale, canonicalised as a BCP 47 tag
// ("en_us" becomes "en-US"). Values that do not parse are passed through.
func LocaleField(get func(ctx context.Context) (string, error)) Field {
	return Field{
		Name: FieldLocale,
		Get: func(ctx context.Context) (any, error) {
			raw, err := get(ctx)
			if err != nil || raw == "" {
				return nil, err
			}
			return NormalizeLocale(raw), nil
		},
	}
}

// NormalizeLocale canonicalises a locale string as a BCP 47 tag.
func NormalizeLocale(raw string) string {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(raw), "_", "-"))
	if err != nil {
		return raw
	}
	return tag.String()
}
