// Package httpserver runs the service's HTTP server with env-driven
// configuration and graceful shutdown. Run blocks until the context is
// canceled or the listener fails; cancellation triggers a bounded Shutdown
// so in-flight login callbacks finish before the process exits.
package httpserver
