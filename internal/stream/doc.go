// Package stream implements the per-client transcription state machine:
// sliding-window assembly over buffered PCM, step-interval triggering,
// incremental diffing of successive window transcriptions and prompt-token
// context carryover. The Manager owns the session table and expires idle
// sessions.
package stream
