// Package app wires the application together: logger, node registry,
// grid loading, the optional upload/preview media server, and the
// sequential execution of grid steps.
package app
