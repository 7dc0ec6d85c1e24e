// Package shared holds cross-cutting helpers that belong to no single
// domain layer. The testutil subpackage carries the test-only pieces: a
// recording slog handler for asserting on component log output.
package shared
