// Package contracts carries the identity shared by the server and the CLI.
// The domain and events subpackages hold the payload types.
package contracts

const (
	// AppName is the canonical application name used in logs and banners.
	AppName = "zvgcli"

	// Version is reported by /api/version, /api/health and zvgctl --version.
	Version = "1.4.0"
)
