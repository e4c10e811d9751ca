// Package server hosts the two network surfaces: the WebSocket streaming
// endpoint that clients push audio to, and the HTTP monitoring API that
// exposes health, session and engine statistics alongside Prometheus
// metrics.
package server
