package stream

import (
	"time"

	"github.com/skypro1111/stream-asr-service/internal/config"
)

// Options contains the per-session sliding-window parameters, resolved
// from durations to sample counts at the configured rate.
type Options struct {
	SampleRate    int
	StepSamples   int
	WindowSamples int
	KeepSamples   int
	Step          time.Duration
	MaxTokens     int
	Language      string
	Translate     bool
	UseContext    bool
	Timestamps    bool
	Diarize       bool
}

// OptionsFromConfig resolves stream configuration into session options.
func OptionsFromConfig(audioCfg config.AudioConfig, streamCfg config.StreamConfig) Options {
	rate := audioCfg.SampleRate

	return Options{
		SampleRate:    rate,
		StepSamples:   samplesFor(streamCfg.StepMs, rate),
		WindowSamples: samplesFor(streamCfg.WindowMs, rate),
		KeepSamples:   samplesFor(streamCfg.KeepMs, rate),
		Step:          streamCfg.GetStepDuration(),
		MaxTokens:     streamCfg.MaxTokens,
		Language:      streamCfg.Language,
		Translate:     streamCfg.Translate,
		UseContext:    streamCfg.UseContext,
		Timestamps:    streamCfg.Timestamps,
		Diarize:       streamCfg.Diarize,
	}
}

func samplesFor(ms, sampleRate int) int {
	return ms * sampleRate / 1000
}
