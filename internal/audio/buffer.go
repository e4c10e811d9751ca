package audio

// RingBuffer accumulates normalized mono samples awaiting inference.
// It keeps at most maxLen samples; when an append would exceed the cap,
// the oldest samples are discarded first. The buffer is not safe for
// concurrent use: the owning session serializes access under its own lock.
type RingBuffer struct {
	data   []float32
	maxLen int
}

// NewRingBuffer creates a buffer that retains at most maxLen samples.
func NewRingBuffer(maxLen int) *RingBuffer {
	if maxLen < 1 {
		maxLen = 1
	}
	return &RingBuffer{
		data:   make([]float32, 0, maxLen),
		maxLen: maxLen,
	}
}

// Append adds samples to the tail of the buffer and returns the number of
// samples evicted from the head to stay within the retention cap.
func (b *RingBuffer) Append(samples []float32) int {
	b.data = append(b.data, samples...)

	if len(b.data) <= b.maxLen {
		return 0
	}

	dropped := len(b.data) - b.maxLen
	copy(b.data, b.data[dropped:])
	b.data = b.data[:b.maxLen]

	return dropped
}

// TakeFront removes and returns the first n samples, or all remaining
// samples if fewer than n are buffered. The returned slice is a copy.
func (b *RingBuffer) TakeFront(n int) []float32 {
	if n < 0 {
		n = 0
	}
	if n > len(b.data) {
		n = len(b.data)
	}

	taken := make([]float32, n)
	copy(taken, b.data[:n])

	remaining := len(b.data) - n
	copy(b.data, b.data[n:])
	b.data = b.data[:remaining]

	return taken
}

// Len returns the current number of buffered samples.
func (b *RingBuffer) Len() int {
	return len(b.data)
}

// Clear discards all buffered samples.
func (b *RingBuffer) Clear() {
	b.data = b.data[:0]
}

// Cap returns the retention cap in samples.
func (b *RingBuffer) Cap() int {
	return b.maxLen
}
