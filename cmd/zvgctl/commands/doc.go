// Package commands defines the zvgctl CLI and wires dependencies for subcommands.
//
// Commands
//
//   - search         Query running foreclosure auctions in one federal state
//   - export         Export selected listings to a CSV or XLSX address file
//   - history list   Show the contact history
//   - history clear  Wipe the contact history
//
// # Implementation
//
// The root command loads the configuration and builds a dependency graph
// (contact store, portal client, services) before any subcommand runs, so
// handlers share one wired context. Logs go to the log file only unless
// --verbose is set, keeping stdout free for command output.
package commands
