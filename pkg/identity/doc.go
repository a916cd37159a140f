// Package identity manages the install-instance id: a 20-character random
// alphanumeric string generated once per install and persisted in a
// kvstore.Store. It stays stable across process restarts until storage is
// cleared (for example by reinstalling the app).
//
//	ids := identity.NewManager(store, identity.WithLogger(log))
//	id := ids.GetOrCreate(ctx)
//
// GetOrCreate never returns an error. When storage fails it returns Sentinel
// so attribution degrades instead of stopping.
package identity
