// Package httpserver runs the dashboard HTTP handler with context-driven
// graceful shutdown and provides liveness and readiness probe handlers.
package httpserver
