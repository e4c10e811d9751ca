package asr

import "context"

// Token is an engine-defined sub-word unit identifier. Token sequences from
// one inference call can be fed back as decoding context for the next.
type Token int32

// Options contains per-call engine parameters.
type Options struct {
	Language  string
	Translate bool
	MaxTokens int
}

// Segment is one timestamped unit of transcribed text returned for a window.
type Segment struct {
	Text            string
	StartMs         int64
	EndMs           int64
	SpeakerTurnNext bool    // engine reports a speaker change after this segment
	Tokens          []Token // decoded tokens, for context carry-over
}

// Result is the engine output for one inference window.
type Result struct {
	Segments []Segment
}

// Engine transcribes a window of normalized mono samples. Implementations
// must be safe for sequential use from multiple sessions; a single session
// never issues overlapping calls.
type Engine interface {
	Infer(ctx context.Context, samples []float32, prompt []Token, opts Options) (*Result, error)
}
