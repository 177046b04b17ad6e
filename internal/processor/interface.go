package processor

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
)

// Processor turns one recording into a transcript and meeting minutes
type Processor interface {
	Process(ctx context.Context, audioPath string) error
}

// Loader decodes a recording into PCM
type Loader interface {
	Load(ctx context.Context, path string) (*audio.Stream, error)
}

// Observer receives segment states and recording outcomes
type Observer interface {
	transcriber.Observer
	ObserveRecording(audio time.Duration, err error)
}
