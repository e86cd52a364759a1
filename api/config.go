// Package api provides the HTTP API server for the assistant, the
// recommendation engine, and catalog ingestion.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string
}
