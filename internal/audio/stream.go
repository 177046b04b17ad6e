package audio

import (
	"fmt"
	"time"
)

// Stream is a decoded PCM-16 recording. Samples are interleaved by channel.
type Stream struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (one sample per channel)
func (s *Stream) Frames() int {
	if s.Channels <= 0 {
		return 0
	}
	return len(s.Samples) / s.Channels
}

// Duration returns the playback length of the stream
func (s *Stream) Duration() time.Duration {
	return frameOffset(s.Frames(), s.SampleRate)
}

// Slice returns the part of the stream covered by seg. The samples are shared.
func (s *Stream) Slice(seg Segment) *Stream {
	return &Stream{
		Samples:    s.Samples[seg.StartFrame*s.Channels : seg.EndFrame*s.Channels],
		SampleRate: s.SampleRate,
		Channels:   s.Channels,
	}
}

func (s *Stream) validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", s.SampleRate)
	}
	if s.Channels <= 0 {
		return fmt.Errorf("channel count must be positive, got %d", s.Channels)
	}
	if len(s.Samples)%s.Channels != 0 {
		return fmt.Errorf("%d samples do not divide into %d channels", len(s.Samples), s.Channels)
	}
	return nil
}

// frameOffset converts a frame position into a time offset. Offsets are
// computed from absolute positions so consecutive lengths add up exactly.
func frameOffset(frame, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	rate := int64(sampleRate)
	secs := int64(frame) / rate
	rem := int64(frame) % rate
	return time.Duration(secs*int64(time.Second) + rem*int64(time.Second)/rate)
}
