package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func float32Bytes(samples []float32) []byte {
	data := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	return data
}

func int16Bytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}

func TestDecodeFrameFloat32(t *testing.T) {
	want := []float32{0.0, 0.5, -0.5, 1.0}
	data := float32Bytes(want)

	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestDecodeFrameInt16(t *testing.T) {
	// 6 bytes: not divisible by 4, divisible by 2.
	data := int16Bytes([]int16{0, 16384, -32768})

	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}

	want := []float32{0.0, 0.5, -1.0}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestDecodeFramePrefersFloat32(t *testing.T) {
	// 8 bytes is valid for both interpretations; float32 wins.
	data := float32Bytes([]float32{0.25, -0.25})

	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 float32 samples, got %d", len(got))
	}
	if got[0] != 0.25 || got[1] != -0.25 {
		t.Errorf("expected [0.25 -0.25], got %v", got)
	}
}

func TestDecodeFrameRejectsOddSize(t *testing.T) {
	_, err := DecodeFrame(make([]byte, 7))
	if err == nil {
		t.Fatal("expected error for 7-byte payload")
	}
}

func TestDecodeFrameEmpty(t *testing.T) {
	got, err := DecodeFrame(nil)
	if err != nil {
		t.Fatalf("DecodeFrame failed on empty payload: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no samples, got %d", len(got))
	}
}

func TestEncodeInt16RoundTrip(t *testing.T) {
	in := []float32{0.0, 0.5, -0.5}
	out := EncodeInt16(in)

	want := []int16{0, 16384, -16384}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], out[i])
		}
	}
}

func TestEncodeInt16Clamps(t *testing.T) {
	out := EncodeInt16([]float32{1.5, -1.5, 1.0})

	if out[0] != 32767 {
		t.Errorf("expected positive clamp to 32767, got %d", out[0])
	}
	if out[1] != -32768 {
		t.Errorf("expected negative clamp to -32768, got %d", out[1])
	}
	if out[2] != 32767 {
		t.Errorf("expected 1.0 to clamp to 32767, got %d", out[2])
	}
}
