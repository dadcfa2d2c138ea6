// Package logging provides concrete implementations of the pgnc.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: leveled messages on stderr through charmbracelet/log
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
