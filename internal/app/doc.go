// Package app provides application initialization and lifecycle management
// for the zvgcli server. It wires configuration, the portal client, the
// contact history store, the websocket hub and all services together, and
// owns startup and graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from defaults, config.yaml and ZVG_* variables
//	2. Initialize logging and the OpenTelemetry metric pipeline
//	3. Open the contact history store selected by the configuration
//	4. Start the websocket hub and build the services
//	5. Set up the router, middleware and the HTTP server
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM and then ensures:
//
//	- Active requests complete within the shutdown timeout
//	- WebSocket connections are closed cleanly
//	- The contact history store is closed
//	- The metric providers are flushed
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit, so main controls the exit process.
package app
