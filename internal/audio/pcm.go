package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeFrame interprets a binary audio payload as normalized float32 mono
// samples. A payload divisible by 4 is treated as little-endian float32;
// otherwise a payload divisible by 2 is treated as little-endian int16 and
// normalized by 1/32768. Any other length is rejected.
func DecodeFrame(data []byte) ([]float32, error) {
	switch {
	case len(data)%4 == 0:
		return decodeFloat32(data), nil
	case len(data)%2 == 0:
		return decodeInt16(data), nil
	default:
		return nil, fmt.Errorf("invalid audio payload size: %d bytes (not float32 or int16 aligned)", len(data))
	}
}

func decodeFloat32(data []byte) []float32 {
	samples := make([]float32, len(data)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}

func decodeInt16(data []byte) []float32 {
	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples
}

// EncodeInt16 converts normalized samples back to 16-bit PCM, clamping to
// the representable range. Used when forwarding audio to the engine as WAV.
func EncodeInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		scaled := s * 32768.0
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		out[i] = int16(scaled)
	}
	return out
}
