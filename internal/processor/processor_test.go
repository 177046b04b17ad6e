package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
)

type fakeLoader struct {
	stream *audio.Stream
	err    error
}

func (l *fakeLoader) Load(ctx context.Context, path string) (*audio.Stream, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return l.stream, l.err
}

type fakeEngine struct {
	failAt int
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Transcribe(ctx context.Context, path string) (string, error) {
	var index int
	if _, err := fmt.Sscanf(filepath.Base(path), "chunk_%d.wav", &index); err != nil {
		return "", err
	}
	if index == e.failAt {
		return "", errors.New("service unavailable")
	}
	return fmt.Sprintf("seg-%d", index), nil
}

type fakeCrew struct {
	inputs []minutes.Inputs
	err    error
}

func (c *fakeCrew) Kickoff(ctx context.Context, in minutes.Inputs) (*minutes.Output, error) {
	c.inputs = append(c.inputs, in)
	if c.err != nil {
		return nil, c.err
	}
	path := filepath.Join(in.OutputDir, "meeting_minutes.md")
	if err := os.WriteFile(path, []byte("# Minutes\n"), 0644); err != nil {
		return nil, err
	}
	return &minutes.Output{Tasks: []minutes.TaskOutput{{Task: "writing", Answer: "# Minutes", Files: []string{path}}}}, nil
}

type fakeObserver struct {
	mu         sync.Mutex
	completed  int
	runs       []transcriber.RunState
	recordings []error
	lengths    []time.Duration
}

func (o *fakeObserver) SegmentState(index int, state transcriber.SegmentState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if state == transcriber.StateCompleted {
		o.completed++
	}
}

func (o *fakeObserver) RunState(state transcriber.RunState, segments int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs = append(o.runs, state)
}

func (o *fakeObserver) ObserveRecording(length time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recordings = append(o.recordings, err)
	o.lengths = append(o.lengths, length)
}

func testConfig(t *testing.T) *config.Config {
	root := t.TempDir()
	cfg := &config.Config{
		Audio:         config.AudioConfig{ChunkDuration: time.Second},
		Transcription: config.TranscriptionConfig{Workers: 2},
		Paths: config.PathsConfig{
			Input:      filepath.Join(root, "input"),
			Processing: filepath.Join(root, "processing"),
			Output:     filepath.Join(root, "output"),
			Archived:   filepath.Join(root, "archived"),
			Temp:       filepath.Join(root, "temp"),
			Chunks:     filepath.Join(root, "chunks"),
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.Input, 0755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

// 2.5 s of mono audio at 1 kHz gives three chunks of one second
func testStream() *audio.Stream {
	return &audio.Stream{Samples: make([]int16, 2500), SampleRate: 1000, Channels: 1}
}

func writeRecording(t *testing.T, dir string) string {
	path := filepath.Join(dir, "weekly-sync.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcess(t *testing.T) {
	cfg := testConfig(t)
	crew := &fakeCrew{}
	obs := &fakeObserver{}
	p := New(cfg, &fakeLoader{stream: testStream()}, &fakeEngine{failAt: -1}, crew, logger.NewNop(), obs)

	recording := writeRecording(t, cfg.Paths.Input)
	if err := p.Process(context.Background(), recording); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	outDir := filepath.Join(cfg.Paths.Output, "weekly-sync")
	data, err := os.ReadFile(filepath.Join(outDir, "transcript.txt"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != "seg-0 seg-1 seg-2\n" {
		t.Errorf("transcript = %q", data)
	}
	if _, err := os.Stat(filepath.Join(outDir, "transcript.docx")); err != nil {
		t.Errorf("transcript docx: %v", err)
	}

	if len(crew.inputs) != 1 {
		t.Fatalf("crew ran %d times, want 1", len(crew.inputs))
	}
	in := crew.inputs[0]
	if in.Transcript != "seg-0 seg-1 seg-2" || in.Title != "weekly-sync" || in.OutputDir != outDir {
		t.Errorf("crew inputs = %+v", in)
	}

	if _, err := os.Stat(recording); !os.IsNotExist(err) {
		t.Errorf("recording still in input: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.Archived, "weekly-sync.wav")); err != nil {
		t.Errorf("recording not archived: %v", err)
	}

	entries, err := os.ReadDir(cfg.Paths.Chunks)
	if err != nil {
		t.Fatalf("read chunks dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("chunk dirs left behind: %d", len(entries))
	}

	if obs.completed != 3 {
		t.Errorf("completed segments = %d, want 3", obs.completed)
	}
	if len(obs.recordings) != 1 || obs.recordings[0] != nil || obs.lengths[0] != 2500*time.Millisecond {
		t.Errorf("recordings = %v lengths = %v", obs.recordings, obs.lengths)
	}
}

func TestProcessOutsideInput(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, &fakeLoader{stream: testStream()}, &fakeEngine{failAt: -1}, &fakeCrew{}, logger.NewNop(), nil)

	recording := writeRecording(t, t.TempDir())
	if err := p.Process(context.Background(), recording); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if _, err := os.Stat(recording); err != nil {
		t.Errorf("recording outside the input folder was moved: %v", err)
	}
}

func TestProcessKeepChunks(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcription.KeepChunks = true
	p := New(cfg, &fakeLoader{stream: testStream()}, &fakeEngine{failAt: -1}, &fakeCrew{}, logger.NewNop(), nil)

	if err := p.Process(context.Background(), writeRecording(t, cfg.Paths.Input)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	runs, err := os.ReadDir(cfg.Paths.Chunks)
	if err != nil || len(runs) != 1 {
		t.Fatalf("chunk run dirs = %v, %v", runs, err)
	}
	chunks, err := os.ReadDir(filepath.Join(cfg.Paths.Chunks, runs[0].Name()))
	if err != nil || len(chunks) != 3 {
		t.Errorf("kept chunks = %d, %v, want 3", len(chunks), err)
	}
}

func TestProcessTranscriptionFailure(t *testing.T) {
	cfg := testConfig(t)
	crew := &fakeCrew{}
	obs := &fakeObserver{}
	p := New(cfg, &fakeLoader{stream: testStream()}, &fakeEngine{failAt: 1}, crew, logger.NewNop(), obs)

	err := p.Process(context.Background(), writeRecording(t, cfg.Paths.Input))

	var terr *transcriber.TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("Process() error = %v, want TranscriptionError", err)
	}
	if terr.Index != 1 {
		t.Errorf("failed index = %d, want 1", terr.Index)
	}
	if len(crew.inputs) != 0 {
		t.Error("crew ran after transcription failed")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.Processing, "weekly-sync.wav")); err != nil {
		t.Errorf("failed recording should stay in processing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.Output, "weekly-sync", "transcript.txt")); !os.IsNotExist(err) {
		t.Errorf("transcript written despite failure: %v", err)
	}
	if len(obs.recordings) != 1 || obs.recordings[0] == nil {
		t.Errorf("recordings = %v, want one failure", obs.recordings)
	}
}

func TestProcessInvalidAudio(t *testing.T) {
	cfg := testConfig(t)
	bad := &audio.Stream{Samples: make([]int16, 3), SampleRate: 1000, Channels: 2}
	p := New(cfg, &fakeLoader{stream: bad}, &fakeEngine{failAt: -1}, &fakeCrew{}, logger.NewNop(), nil)

	err := p.Process(context.Background(), writeRecording(t, cfg.Paths.Input))

	var serr *audio.SplitError
	if !errors.As(err, &serr) {
		t.Fatalf("Process() error = %v, want SplitError", err)
	}
}

func TestProcessCrewFailure(t *testing.T) {
	cfg := testConfig(t)
	boom := errors.New("model overloaded")
	p := New(cfg, &fakeLoader{stream: testStream()}, &fakeEngine{failAt: -1}, &fakeCrew{err: boom}, logger.NewNop(), nil)

	err := p.Process(context.Background(), writeRecording(t, cfg.Paths.Input))
	if !errors.Is(err, boom) {
		t.Fatalf("Process() error = %v, want %v", err, boom)
	}
	// The transcript is kept so the minutes can be regenerated
	if _, err := os.Stat(filepath.Join(cfg.Paths.Output, "weekly-sync", "transcript.txt")); err != nil {
		t.Errorf("transcript missing: %v", err)
	}
}
