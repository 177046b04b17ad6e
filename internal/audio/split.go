package audio

import (
	"fmt"
	"time"
)

// Segment is one contiguous slice of a Stream, in sequence order
type Segment struct {
	Index      int
	StartFrame int
	EndFrame   int
	Offset     time.Duration
	Length     time.Duration
}

// Frames returns the number of frames covered by the segment
func (s Segment) Frames() int {
	return s.EndFrame - s.StartFrame
}

func (s Segment) String() string {
	return fmt.Sprintf("segment %d [%s +%s]", s.Index, s.Offset, s.Length)
}

// Split cuts stream into consecutive segments of chunk length. The segments
// cover the stream end to end without gaps or overlaps and only the last one
// may be shorter. chunk is rounded down to whole frames.
func Split(stream *Stream, chunk time.Duration) ([]Segment, error) {
	if stream == nil {
		return nil, &SplitError{Op: "validate stream", Err: fmt.Errorf("nil stream")}
	}
	if chunk <= 0 {
		return nil, &SplitError{Op: "validate chunk", Err: fmt.Errorf("chunk duration must be positive, got %s", chunk)}
	}
	if err := stream.validate(); err != nil {
		return nil, &SplitError{Op: "validate stream", Err: err}
	}

	perChunk := framesIn(chunk, stream.SampleRate)
	if perChunk <= 0 {
		return nil, &SplitError{
			Op:  "validate chunk",
			Err: fmt.Errorf("chunk duration %s is shorter than one frame at %d Hz", chunk, stream.SampleRate),
		}
	}

	total := stream.Frames()
	if total == 0 {
		return []Segment{}, nil
	}

	count := (total + perChunk - 1) / perChunk
	segments := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		start := i * perChunk
		end := min(start+perChunk, total)

		offset := frameOffset(start, stream.SampleRate)
		segments = append(segments, Segment{
			Index:      i,
			StartFrame: start,
			EndFrame:   end,
			Offset:     offset,
			Length:     frameOffset(end, stream.SampleRate) - offset,
		})
	}

	return segments, nil
}

// framesIn returns the whole frames in d at sampleRate. Whole seconds and the
// remainder are scaled apart so long durations do not overflow.
func framesIn(d time.Duration, sampleRate int) int {
	rate := int64(sampleRate)
	secs := int64(d / time.Second)
	rem := int64(d % time.Second)
	return int(secs*rate + rem*rate/int64(time.Second))
}
