// Package services implements the business logic layer between the HTTP
// handlers and the collaborating packages. Handlers stay thin: they decode
// and validate requests, call one service method and render the result.
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// The package provides these core services:
//
//	- SearchService: portal search, result filtering, contact suppression
//	- ExportService: address expansion, CSV/XLSX serialization, history commit
//	- ContactService: contact history inspection and correction
//	- StatsService: aggregates over the cached result sets
//	- HealthService: process health and runtime statistics
//
// Services return sentinel errors from internal/errors (wrapped with
// context); handlers translate them into RFC 7807 problem responses.
package services
