// Package transcript converts successive full-window transcriptions into
// incremental deltas, so clients receive only newly spoken text.
package transcript
