package transcriber

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
)

// Run fans the segments out to a bounded pool and joins the texts by index.
// The first failing segment cancels the remaining jobs and the run returns a
// *TranscriptionError for it; there is no partial transcript.
func (a *implAggregator) Run(ctx context.Context, stream *audio.Stream, segments []audio.Segment) (*Transcript, error) {
	for i, seg := range segments {
		if seg.Index != i {
			return nil, fmt.Errorf("segment at position %d has index %d", i, seg.Index)
		}
	}
	if len(segments) == 0 {
		return &Transcript{Results: []Result{}}, nil
	}

	if a.opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Deadline)
		defer cancel()
	}

	startTime := time.Now()
	a.observer.RunState(RunRunning, len(segments))
	a.logger.Info(ctx, "Transcribing %d segment(s) with %s, %d worker(s)", len(segments), a.engine.Name(), a.opts.Workers)

	// Write-once slots keyed by segment index
	texts := make([]string, len(segments))
	done := make([]bool, len(segments))

	for _, seg := range segments {
		a.observer.SegmentState(seg.Index, StatePending)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)

	for _, seg := range segments {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Not dispatched once the run is cancelled
			if gctx.Err() != nil {
				return nil
			}
			text, err := a.transcribe(gctx, stream, seg)
			if err != nil {
				return &TranscriptionError{Index: seg.Index, Err: err}
			}
			texts[seg.Index] = text
			done[seg.Index] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.observer.RunState(RunAborted, len(segments))
		a.logger.Error(ctx, "Transcription aborted after %s: %v", time.Since(startTime), err)
		// Caller cancellation and the overall deadline abort the run, no
		// segment is to blame
		if ctx.Err() != nil {
			return nil, fmt.Errorf("transcription aborted: %w", context.Cause(ctx))
		}
		return nil, err
	}

	for i := range done {
		if !done[i] {
			a.observer.RunState(RunAborted, len(segments))
			return nil, fmt.Errorf("transcription aborted before segment %d: %w", i, context.Cause(ctx))
		}
	}

	results := make([]Result, len(segments))
	for i, seg := range segments {
		results[i] = Result{Index: seg.Index, Offset: seg.Offset, Text: texts[i]}
	}

	a.observer.RunState(RunAllCompleted, len(segments))
	a.logger.Info(ctx, "Transcribed %d segment(s) in %s", len(segments), time.Since(startTime))
	return &Transcript{Results: results}, nil
}

// transcribe materializes one segment in the exchange area and sends it to
// the engine
func (a *implAggregator) transcribe(ctx context.Context, stream *audio.Stream, seg audio.Segment) (string, error) {
	a.observer.SegmentState(seg.Index, StateDispatched)
	a.logger.Debug(ctx, "Transcribing %s", seg)
	startTime := time.Now()

	text, err := a.transcribeFile(ctx, stream, seg)
	if err != nil {
		// ctx is the run context, a job timeout does not cancel it
		if ctx.Err() != nil {
			a.observer.SegmentState(seg.Index, StateCancelled)
			a.logger.Debug(ctx, "Segment %d cancelled after %s", seg.Index, time.Since(startTime))
			return "", err
		}
		a.observer.SegmentState(seg.Index, StateFailed)
		a.logger.Warn(ctx, "Segment %d failed after %s: %v", seg.Index, time.Since(startTime), err)
		return "", err
	}

	a.observer.SegmentState(seg.Index, StateCompleted)
	a.logger.Debug(ctx, "Segment %d done in %s", seg.Index, time.Since(startTime))
	return text, nil
}

func (a *implAggregator) transcribeFile(ctx context.Context, stream *audio.Stream, seg audio.Segment) (string, error) {
	data, err := audio.EncodeWAV(stream.Slice(seg))
	if err != nil {
		return "", fmt.Errorf("encode segment: %w", err)
	}

	path, err := a.exchange.Put(seg.Index, data)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := a.exchange.Release(path); err != nil {
			a.logger.Warn(ctx, "Failed to release %s: %v", path, err)
		}
	}()

	if a.opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.JobTimeout)
		defer cancel()
	}

	return a.engine.Transcribe(ctx, path)
}
