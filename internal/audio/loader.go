package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

// SupportedExtensions lists the recording formats accepted by Loader. WAV and
// MP3 are decoded in-process, the rest go through ffmpeg.
var SupportedExtensions = []string{".wav", ".mp3", ".m4a", ".aac", ".ogg", ".opus", ".flac", ".webm", ".mp4", ".mov", ".mkv"}

// IsSupported reports whether path has a recording extension Loader accepts
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Loader turns recording files into Streams
type Loader struct {
	executor   executor.Executor
	logger     logger.Logger
	tempDir    string
	sampleRate int
}

// NewLoader creates a Loader. tempDir holds ffmpeg conversions, sampleRate is
// the rate ffmpeg resamples to.
func NewLoader(exec executor.Executor, log logger.Logger, tempDir string, sampleRate int) *Loader {
	return &Loader{
		executor:   exec,
		logger:     log,
		tempDir:    tempDir,
		sampleRate: sampleRate,
	}
}

// Load decodes the recording at path. Unreadable or malformed input is
// reported as a *SplitError.
func (l *Loader) Load(ctx context.Context, path string) (*Stream, error) {
	var (
		stream *Stream
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		stream, err = l.loadWAV(path)
	case ".mp3":
		stream, err = l.loadMP3(path)
	default:
		stream, err = l.loadConverted(ctx, path)
	}
	if err != nil {
		return nil, &SplitError{Op: "decode " + filepath.Base(path), Err: err}
	}

	l.logger.Info(ctx, "Decoded %s: %s, %d Hz, %d channel(s)",
		filepath.Base(path), stream.Duration(), stream.SampleRate, stream.Channels)
	return stream, nil
}

func (l *Loader) loadWAV(path string) (*Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return DecodeWAV(data)
}

func (l *Loader) loadMP3(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mp3: %w", err)
	}
	defer f.Close()

	return DecodeMP3(f)
}

// loadConverted extracts audio with ffmpeg into a temporary 16-bit mono WAV
func (l *Loader) loadConverted(ctx context.Context, path string) (*Stream, error) {
	if err := os.MkdirAll(l.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	tmp, err := os.CreateTemp(l.tempDir, "convert-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	audioPath := tmp.Name()
	tmp.Close()
	defer os.Remove(audioPath)

	l.logger.Info(ctx, "Extracting audio with ffmpeg: %s", path)

	// -vn drops video, pcm_s16le keeps the output decodable by DecodeWAV
	args := []string{
		"-i", path,
		"-vn",
		"-ar", strconv.Itoa(l.sampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		audioPath,
	}

	if _, err := l.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return nil, fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	return l.loadWAV(audioPath)
}
