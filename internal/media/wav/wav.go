package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// The pipeline operates on the canonical acoustic-model input format: mono
// 16-bit PCM at 16 kHz, produced upstream by the media converter.
const (
	SampleRate    = 16000
	channels      = 1
	bitsPerSample = 16
)

var (
	ErrNotWave        = errors.New("not a RIFF/WAVE file")
	ErrUnsupportedPCM = errors.New("unsupported WAV encoding: want mono 16-bit PCM")
)

// Read decodes a mono 16-bit PCM WAV file into float32 samples in [-1, 1]
// and returns the sample rate.
func Read(path string) ([]float32, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	return Decode(data)
}

// Decode parses WAV bytes. Only mono 16-bit PCM is accepted; the fmt chunk
// must precede the data chunk, unknown chunks are skipped.
func Decode(data []byte) ([]float32, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, ErrNotWave
	}

	var (
		sampleRate int
		haveFormat bool
		pcm        []byte
	)
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if chunkLen < 0 || body+chunkLen > len(data) {
			return nil, 0, fmt.Errorf("%w: truncated %q chunk", ErrNotWave, chunkID)
		}
		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return nil, 0, fmt.Errorf("%w: short fmt chunk", ErrNotWave)
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			numChannels := binary.LittleEndian.Uint16(data[body+2 : body+4])
			rate := binary.LittleEndian.Uint32(data[body+4 : body+8])
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if audioFormat != 1 || numChannels != channels || bits != bitsPerSample {
				return nil, 0, ErrUnsupportedPCM
			}
			sampleRate = int(rate)
			haveFormat = true
		case "data":
			pcm = data[body : body+chunkLen]
		}
		// Chunks are word-aligned.
		offset = body + chunkLen + chunkLen%2
	}

	if !haveFormat {
		return nil, 0, fmt.Errorf("%w: missing fmt chunk", ErrNotWave)
	}
	if pcm == nil {
		return nil, 0, fmt.Errorf("%w: missing data chunk", ErrNotWave)
	}

	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		raw := int16(binary.LittleEndian.Uint16(pcm[2*i : 2*i+2]))
		samples[i] = float32(raw) / 32768
	}
	return samples, sampleRate, nil
}

// Write encodes float32 samples as a mono 16-bit PCM WAV file.
func Write(path string, samples []float32, sampleRate int) error {
	var buf bytes.Buffer
	if err := Encode(&buf, samples, sampleRate); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Encode writes a canonical 44-byte-header WAV stream to w.
func Encode(w io.Writer, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	dataLen := len(samples) * 2
	byteRate := sampleRate * channels * bitsPerSample / 8

	var header bytes.Buffer
	header.WriteString("RIFF")
	binary.Write(&header, binary.LittleEndian, uint32(36+dataLen))
	header.WriteString("WAVE")
	header.WriteString("fmt ")
	binary.Write(&header, binary.LittleEndian, uint32(16))
	binary.Write(&header, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&header, binary.LittleEndian, uint16(channels))
	binary.Write(&header, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&header, binary.LittleEndian, uint32(byteRate))
	binary.Write(&header, binary.LittleEndian, uint16(channels*bitsPerSample/8))
	binary.Write(&header, binary.LittleEndian, uint16(bitsPerSample))
	header.WriteString("data")
	binary.Write(&header, binary.LittleEndian, uint32(dataLen))
	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}

	pcm := make([]byte, dataLen)
	for i, s := range samples {
		clamped := math.Max(-1, math.Min(1, float64(s)))
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(clamped*32767)))
	}
	_, err := w.Write(pcm)
	return err
}

// Duration returns the length in seconds of a sample buffer at the given rate.
func Duration(sampleCount, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(sampleCount) / float64(sampleRate)
}
