// Package config provides centralized configuration management for zvgcli.
// It handles loading configuration from multiple sources, validation, and
// provides a type-safe API for accessing configuration values throughout the
// application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A config.yaml file in the working directory or configs/
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ZVG_* for namespacing:
//
//	ZVG_SERVER_PORT=8080
//	ZVG_LOGGING_LEVEL=info
//	ZVG_PORTAL_BASE_URL=https://www.zvg-portal.de
//	ZVG_CONTACTS_BACKEND=sqlite
//	ZVG_CACHE_TTL=1800
//
// ZVG_CACHE_TTL is special-cased: it carries whole seconds and overrides
// ZVG_PORTAL_CACHE_TTL.
//
// # Path Management
//
// Relative directories in the paths section resolve against the executable
// directory, never the working directory, so the binary behaves the same no
// matter where it is started from:
//
//	cfg.GetDataDir()
//	cfg.ContactsFilePath()
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
