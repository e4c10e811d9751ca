// Package asr defines the boundary to the external speech-recognition
// engine: the Engine interface with its segment and token types, an HTTP
// client for whisper-server style endpoints, and a programmable mock.
package asr
