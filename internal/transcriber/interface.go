package transcriber

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
)

// Aggregator transcribes every segment of a stream concurrently and
// reassembles the texts in segment order.
type Aggregator interface {
	Run(ctx context.Context, stream *audio.Stream, segments []audio.Segment) (*Transcript, error)
}

// Exchange is the scratch area each segment is written to before it is
// handed to the transcription engine.
type Exchange interface {
	// Put stores the encoded segment and returns its path
	Put(index int, data []byte) (string, error)
	// Release drops the file once its transcription call returned
	Release(path string) error
}

// Observer receives state transitions. It is called from worker goroutines
// and must be safe for concurrent use.
type Observer interface {
	SegmentState(index int, state SegmentState)
	RunState(state RunState, segments int)
}
