package audio

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAV(t *testing.T) {
	samples := make([]float32, 160)
	for i := range samples {
		samples[i] = 0.1
	}

	data, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	// 44-byte header + 2 bytes per sample.
	wantLen := 44 + len(samples)*2
	if len(data) != wantLen {
		t.Errorf("expected %d bytes, got %d", wantLen, len(data))
	}

	if string(data[0:4]) != "RIFF" {
		t.Errorf("expected RIFF magic, got %q", data[0:4])
	}
	if string(data[8:12]) != "WAVE" {
		t.Errorf("expected WAVE format, got %q", data[8:12])
	}

	sampleRate := binary.LittleEndian.Uint32(data[24:28])
	if sampleRate != 16000 {
		t.Errorf("expected sample rate 16000 in header, got %d", sampleRate)
	}

	channels := binary.LittleEndian.Uint16(data[22:24])
	if channels != 1 {
		t.Errorf("expected 1 channel, got %d", channels)
	}

	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if int(dataSize) != len(samples)*2 {
		t.Errorf("expected data size %d, got %d", len(samples)*2, dataSize)
	}
}

func TestEncodeWAVEmpty(t *testing.T) {
	_, err := EncodeWAV(nil, 16000)
	if err == nil {
		t.Fatal("expected error for empty samples")
	}
}

func TestEncodeWAVInvalidSampleRate(t *testing.T) {
	_, err := EncodeWAV([]float32{0.1}, 0)
	if err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}
