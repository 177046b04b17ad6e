package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

// fakeEngine recovers the segment index from the chunk file name
type fakeEngine struct {
	fn func(ctx context.Context, index int, path string) (string, error)

	mu        sync.Mutex
	calls     map[int]int
	active    int
	maxActive int
}

func newFakeEngine(fn func(ctx context.Context, index int, path string) (string, error)) *fakeEngine {
	return &fakeEngine{fn: fn, calls: make(map[int]int)}
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Transcribe(ctx context.Context, path string) (string, error) {
	var index int
	if _, err := fmt.Sscanf(filepath.Base(path), "chunk_%d.wav", &index); err != nil {
		return "", fmt.Errorf("unexpected chunk path %s", path)
	}

	f.mu.Lock()
	f.calls[index]++
	f.active++
	f.maxActive = max(f.maxActive, f.active)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	return f.fn(ctx, index, path)
}

// recordingObserver keeps every transition per segment
type recordingObserver struct {
	mu       sync.Mutex
	segments map[int][]SegmentState
	runs     []RunState
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{segments: make(map[int][]SegmentState)}
}

func (o *recordingObserver) SegmentState(index int, state SegmentState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.segments[index] = append(o.segments[index], state)
}

func (o *recordingObserver) RunState(state RunState, segments int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs = append(o.runs, state)
}

// fixture returns a 1 kHz mono stream of n one-second segments
func fixture(t *testing.T, seconds float64) (*audio.Stream, []audio.Segment) {
	t.Helper()
	stream := &audio.Stream{
		Samples:    make([]int16, int(seconds*1000)),
		SampleRate: 1000,
		Channels:   1,
	}
	segments, err := audio.Split(stream, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return stream, segments
}

func newExchange(t *testing.T, keep bool) *DirExchange {
	t.Helper()
	x, err := NewDirExchange(t.TempDir(), "run", keep)
	if err != nil {
		t.Fatal(err)
	}
	return x
}

func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			q := append(append(append([]int{}, p[:i]...), n-1), p[i:]...)
			out = append(out, q)
		}
	}
	return out
}

func TestRunOrderIndependentOfCompletion(t *testing.T) {
	stream, segments := fixture(t, 4)
	want := "text-0 text-1 text-2 text-3"

	for _, order := range permutations(len(segments)) {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			// Each job waits for its turn so completions happen in `order`
			turns := make([]chan struct{}, len(segments))
			for i := range turns {
				turns[i] = make(chan struct{})
			}
			finished := make(chan int, len(segments))

			engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
				select {
				case <-turns[index]:
				case <-ctx.Done():
					return "", ctx.Err()
				}
				finished <- index
				return fmt.Sprintf("text-%d", index), nil
			})

			go func() {
				for _, idx := range order {
					close(turns[idx])
					<-finished
				}
			}()

			agg := New(engine, newExchange(t, false), Options{Workers: len(segments)}, logger.NewNop(), nil)
			transcript, err := agg.Run(context.Background(), stream, segments)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got := transcript.Text(); got != want {
				t.Errorf("Text() = %q, want %q", got, want)
			}
		})
	}
}

func TestRunRoundTrip(t *testing.T) {
	stream, segments := fixture(t, 5.5)
	words := []string{"good morning", "let's start", "with the budget", "any questions", "thanks all"}

	engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		chunk, err := audio.DecodeWAV(data)
		if err != nil {
			return "", err
		}
		if chunk.Frames() != segments[index].Frames() {
			return "", fmt.Errorf("chunk %d has %d frames, want %d", index, chunk.Frames(), segments[index].Frames())
		}
		if index < len(words) {
			return words[index], nil
		}
		return "bye", nil
	})

	transcript, err := New(engine, newExchange(t, false), Options{Workers: 2}, logger.NewNop(), nil).
		Run(context.Background(), stream, segments)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := strings.Join(append(words, "bye"), " ")
	if got := transcript.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	for i, r := range transcript.Results {
		if r.Index != i || r.Offset != segments[i].Offset {
			t.Errorf("result %d = %+v, want index %d offset %s", i, r, i, segments[i].Offset)
		}
	}
	for i := range segments {
		if engine.calls[i] != 1 {
			t.Errorf("segment %d submitted %d times, want 1", i, engine.calls[i])
		}
	}
}

func TestRunEmpty(t *testing.T) {
	stream, segments := fixture(t, 0)
	engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
		return "never", nil
	})

	transcript, err := New(engine, newExchange(t, false), Options{Workers: 2}, logger.NewNop(), nil).
		Run(context.Background(), stream, segments)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if transcript.Text() != "" {
		t.Errorf("Text() = %q, want empty", transcript.Text())
	}
	if len(engine.calls) != 0 {
		t.Errorf("engine called %d times", len(engine.calls))
	}
}

func TestRunFailFast(t *testing.T) {
	stream, segments := fixture(t, 6)
	boom := errors.New("malformed audio")

	for k := range segments {
		t.Run(fmt.Sprintf("fail at %d", k), func(t *testing.T) {
			observer := newRecordingObserver()
			engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
				switch {
				case index < k:
					return fmt.Sprintf("text-%d", index), nil
				case index == k:
					return "", boom
				}
				// Later segments hang until the failure cancels them
				<-ctx.Done()
				return "", ctx.Err()
			})

			transcript, err := New(engine, newExchange(t, false), Options{Workers: 3}, logger.NewNop(), observer).
				Run(context.Background(), stream, segments)

			if transcript != nil {
				t.Errorf("Run() returned a transcript on failure: %q", transcript.Text())
			}
			var terr *TranscriptionError
			if !errors.As(err, &terr) {
				t.Fatalf("Run() error = %v, want *TranscriptionError", err)
			}
			if terr.Index != k {
				t.Errorf("failing index = %d, want %d", terr.Index, k)
			}
			if !errors.Is(err, boom) {
				t.Errorf("error %v does not wrap the cause", err)
			}
			for i, n := range engine.calls {
				if n > 1 {
					t.Errorf("segment %d submitted %d times", i, n)
				}
			}
			if got := observer.runs[len(observer.runs)-1]; got != RunAborted {
				t.Errorf("final run state = %s, want aborted", got)
			}
		})
	}
}

func TestRunBoundedWorkers(t *testing.T) {
	stream, segments := fixture(t, 12)
	engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
		time.Sleep(5 * time.Millisecond)
		return "x", nil
	})

	if _, err := New(engine, newExchange(t, false), Options{Workers: 3}, logger.NewNop(), nil).
		Run(context.Background(), stream, segments); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if engine.maxActive > 3 {
		t.Errorf("max concurrent calls = %d, want <= 3", engine.maxActive)
	}
	if len(engine.calls) != len(segments) {
		t.Errorf("engine saw %d segments, want %d", len(engine.calls), len(segments))
	}
}

func TestRunJobTimeout(t *testing.T) {
	stream, segments := fixture(t, 2)
	engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
		if index == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "ok", nil
	})

	_, err := New(engine, newExchange(t, false), Options{Workers: 2, JobTimeout: 20 * time.Millisecond}, logger.NewNop(), nil).
		Run(context.Background(), stream, segments)

	var terr *TranscriptionError
	if !errors.As(err, &terr) || terr.Index != 1 {
		t.Fatalf("Run() error = %v, want TranscriptionError for segment 1", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error %v does not wrap context.DeadlineExceeded", err)
	}
}

func TestRunCallerCancel(t *testing.T) {
	stream, segments := fixture(t, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
		return "x", nil
	})

	transcript, err := New(engine, newExchange(t, false), Options{Workers: 2}, logger.NewNop(), nil).
		Run(ctx, stream, segments)
	if err == nil || transcript != nil {
		t.Fatalf("Run() = %v, %v; want error and no transcript", transcript, err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v does not wrap context.Canceled", err)
	}
}

func TestRunRejectsMisindexedSegments(t *testing.T) {
	stream, segments := fixture(t, 3)
	segments[1], segments[2] = segments[2], segments[1]

	engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
		return "x", nil
	})
	if _, err := New(engine, newExchange(t, false), Options{Workers: 2}, logger.NewNop(), nil).
		Run(context.Background(), stream, segments); err == nil {
		t.Error("Run() should reject segments out of order")
	}
}

func TestRunStateTransitions(t *testing.T) {
	stream, segments := fixture(t, 3)
	observer := newRecordingObserver()
	engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
		return "x", nil
	})

	if _, err := New(engine, newExchange(t, false), Options{Workers: 2}, logger.NewNop(), observer).
		Run(context.Background(), stream, segments); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []SegmentState{StatePending, StateDispatched, StateCompleted}
	for i := range segments {
		got := observer.segments[i]
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("segment %d states = %v, want %v", i, got, want)
		}
	}
	if fmt.Sprint(observer.runs) != fmt.Sprint([]RunState{RunRunning, RunAllCompleted}) {
		t.Errorf("run states = %v", observer.runs)
	}
}

func lastStates(o *recordingObserver) map[int]SegmentState {
	o.mu.Lock()
	defer o.mu.Unlock()
	last := make(map[int]SegmentState, len(o.segments))
	for i, states := range o.segments {
		last[i] = states[len(states)-1]
	}
	return last
}

func TestRunCallerCancelMidRun(t *testing.T) {
	stream, segments := fixture(t, 8)
	observer := newRecordingObserver()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{}, len(segments))
	engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
		started <- struct{}{}
		<-ctx.Done()
		return "", ctx.Err()
	})

	go func() {
		<-started
		cancel()
	}()

	transcript, err := New(engine, newExchange(t, false), Options{Workers: 4}, logger.NewNop(), observer).
		Run(ctx, stream, segments)

	if transcript != nil {
		t.Errorf("Run() returned a transcript: %q", transcript.Text())
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	var terr *TranscriptionError
	if errors.As(err, &terr) {
		t.Errorf("cancellation reported as a failure of segment %d", terr.Index)
	}
	for i, state := range lastStates(observer) {
		if state == StateFailed {
			t.Errorf("segment %d ended failed, want cancelled or pending", i)
		}
	}
}

func TestRunDeadline(t *testing.T) {
	stream, segments := fixture(t, 4)
	engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := New(engine, newExchange(t, false), Options{Workers: 4, Deadline: 20 * time.Millisecond}, logger.NewNop(), nil).
		Run(context.Background(), stream, segments)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	var terr *TranscriptionError
	if errors.As(err, &terr) {
		t.Errorf("deadline reported as a failure of segment %d", terr.Index)
	}
}

func TestRunFailFastCancelsSiblings(t *testing.T) {
	stream, segments := fixture(t, 4)
	observer := newRecordingObserver()
	boom := errors.New("service unavailable")
	firstStarted := make(chan struct{})

	engine := newFakeEngine(func(ctx context.Context, index int, path string) (string, error) {
		switch index {
		case 0:
			close(firstStarted)
			<-ctx.Done()
			return "", ctx.Err()
		case 1:
			<-firstStarted
			return "", boom
		}
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := New(engine, newExchange(t, false), Options{Workers: 2}, logger.NewNop(), observer).
		Run(context.Background(), stream, segments)

	var terr *TranscriptionError
	if !errors.As(err, &terr) || terr.Index != 1 {
		t.Fatalf("Run() error = %v, want TranscriptionError for segment 1", err)
	}

	last := lastStates(observer)
	if last[1] != StateFailed {
		t.Errorf("segment 1 ended %s, want failed", last[1])
	}
	if last[0] != StateCancelled {
		t.Errorf("segment 0 ended %s, want cancelled", last[0])
	}
	for i, state := range last {
		if i != 1 && state == StateFailed {
			t.Errorf("segment %d ended failed, only segment 1 failed", i)
		}
	}
}
