// Package protocol defines the WebSocket wire format: inbound JSON control
// messages (config, flush, reset) and the outbound JSON message set sent
// back to clients. Binary audio frames carry raw PCM and are decoded by the
// audio package.
package protocol
