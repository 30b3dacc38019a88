// Package config holds the name server's two configuration records and the
// machinery that fills them.
//
// # Records
//
// ServiceConfig carries the name server settings (home directory, KV store
// path, broker expiry) and TransportConfig carries the listener settings
// (port, buffer sizes, timeouts). Both expose an explicit binding table,
// a list of (key, setter, getter) entries, instead of relying on reflection:
//
//	props, _ := config.LoadProperties("namesrv.properties")
//	svc := config.NewServiceConfig(env.Home)
//	if err := config.Apply(props, svc.Bindings()); err != nil {
//	    return err
//	}
//
// Property keys with no binding are ignored by the records, which keeps
// older binaries working with newer files. Bindings with a nil setter (the
// home directory) are reported but can never be set from a file or the
// command line.
//
// # Sources
//
//   - properties files, parsed with github.com/magiconair/properties
//   - the NAMESRV_* environment, read through github.com/spf13/viper
//   - command line overrides, converted by the caller into properties
//
// # Registry
//
// Registry keeps every property the process booted with, including keys
// that matched no field, so operators can inspect the exact configuration
// later and push updates that are persisted back to disk.
package config
