package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes an MP3 file. The decoder always yields 16-bit stereo.
func DecodeMP3(r io.Reader) (*Stream, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}

	const channels = 2
	n := len(pcm) / 2
	n -= n % channels
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	return &Stream{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		Channels:   channels,
	}, nil
}
