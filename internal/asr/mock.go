package asr

import (
	"context"
	"fmt"
	"sync"
)

// MockCall records the arguments of one Infer invocation.
type MockCall struct {
	SampleCount int
	Prompt      []Token
	Options     Options
}

// Mock is a programmable engine for tests. Queued results and errors are
// returned in order; an exhausted queue yields an empty result.
type Mock struct {
	mu    sync.Mutex
	queue []mockReply
	calls []MockCall
}

type mockReply struct {
	result *Result
	err    error
}

// NewMock creates an empty programmable engine.
func NewMock() *Mock {
	return &Mock{}
}

// Enqueue appends a canned result to the reply queue.
func (m *Mock) Enqueue(result *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{result: result})
}

// EnqueueText appends a single-segment result with the given text and times.
func (m *Mock) EnqueueText(text string, startMs, endMs int64, tokens ...Token) {
	m.Enqueue(&Result{
		Segments: []Segment{{
			Text:    text,
			StartMs: startMs,
			EndMs:   endMs,
			Tokens:  tokens,
		}},
	})
}

// EnqueueError appends an error reply.
func (m *Mock) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{err: err})
}

// Infer pops the next queued reply and records the call.
func (m *Mock) Infer(ctx context.Context, samples []float32, prompt []Token, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	promptCopy := make([]Token, len(prompt))
	copy(promptCopy, prompt)
	m.calls = append(m.calls, MockCall{
		SampleCount: len(samples),
		Prompt:      promptCopy,
		Options:     opts,
	})

	if len(m.queue) == 0 {
		return &Result{}, nil
	}

	reply := m.queue[0]
	m.queue = m.queue[1:]

	if reply.err != nil {
		return nil, fmt.Errorf("mock engine: %w", reply.err)
	}
	return reply.result, nil
}

// Calls returns a snapshot of recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns the number of Infer invocations so far.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
