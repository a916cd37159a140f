// Package fingerprint collects a best-effort snapshot of device attributes.
//
// Attributes are declared as Fields, each with a Getter that may block, fail
// or panic. Collect runs every getter concurrently, together with the
// install-referrer query and the platform advertising identifier, and joins
// on all of them. A failing getter only affects its own field, which receives
// the declared fallback (nil by default).
//
// # Usage
//
//	c := fingerprint.NewCollector(
//		fingerprint.WithOS(fingerprint.OSAndroid),
//		fingerprint.WithFields(
//			fingerprint.Static(fingerprint.FieldBrand, "google"),
//			fingerprint.LocaleField(device.Locale),
//		),
//		fingerprint.WithReferrer(referrer.NewReader(channel)),
//		fingerprint.WithAdvertisingID(ads),
//	)
//	fp := c.Collect(ctx)
//
// # Advertising identifier
//
// On Android the value is stored under "gaid", on iOS under "idfa". Other
// platforms omit the key. Consent is asked on every Collect and a denied or
// limited user yields nil.
//
// Fingerprint.Digest hashes the sorted attributes with SHA-256 and returns
// the first 16 bytes as hex, which is handy for log correlation.
package fingerprint
