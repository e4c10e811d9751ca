// Package audio handles sample buffering and PCM format conversion.
// It implements the bounded accumulation buffer used by stream sessions,
// decoding of inbound binary frames (float32 or int16) into normalized
// samples, and WAV encoding for handoff to the ASR engine.
package audio
