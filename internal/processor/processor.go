package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
)

// Process orchestrates the entire meeting minutes pipeline for one recording
func (p *implProcessor) Process(ctx context.Context, audioPath string) (err error) {
	startTime := time.Now()
	runID := uuid.NewString()
	log := p.logger.With("run_id", runID)

	name := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	outputDir := filepath.Join(p.cfg.Paths.Output, name)

	log.Info(ctx, "========================================")
	log.Info(ctx, "Starting meeting processing: %s", audioPath)
	log.Info(ctx, "========================================")

	var audioLength time.Duration
	if p.observer != nil {
		defer func() { p.observer.ObserveRecording(audioLength, err) }()
	}

	// Step 1: Claim the recording when it came through the input folder
	managed := p.inInput(audioPath)
	if managed {
		audioPath, err = p.moveToProcessing(ctx, log, audioPath)
		if err != nil {
			return err
		}
	}

	// Step 2: Decode and split
	stream, err := p.loader.Load(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("load audio: %w", err)
	}
	audioLength = stream.Duration()

	segments, err := audio.Split(stream, p.cfg.Audio.ChunkDuration)
	if err != nil {
		return err
	}
	log.Info(ctx, "Split %s of audio into %d chunk(s) of %s", audioLength.Round(time.Millisecond), len(segments), p.cfg.Audio.ChunkDuration)

	// Step 3: Transcribe all chunks
	transcript, err := p.transcribe(ctx, log, runID, stream, segments)
	if err != nil {
		return err
	}
	transcriptStep := time.Since(startTime)

	// Step 4: Save the transcript
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := p.writeTranscript(ctx, log, name, outputDir, transcript); err != nil {
		return err
	}

	// Step 5: Generate minutes
	out, err := p.crew.Kickoff(ctx, minutes.Inputs{
		Title:      name,
		Transcript: transcript.Text(),
		OutputDir:  outputDir,
	})
	if err != nil {
		return fmt.Errorf("generate minutes: %w", err)
	}

	// Step 6: Archive the original
	if managed {
		if _, err := p.moveToArchived(ctx, log, audioPath); err != nil {
			log.Warn(ctx, "Failed to move original to archived folder: %v", err)
		}
	}

	log.Info(ctx, "========================================")
	log.Info(ctx, "Processing completed successfully!")
	log.Info(ctx, "Output folder: %s", outputDir)
	for _, task := range out.Tasks {
		for _, f := range task.Files {
			log.Info(ctx, "  - %s (%s)", filepath.Base(f), task.Task)
		}
	}
	log.Info(ctx, "Transcription time: %s", transcriptStep.Round(time.Millisecond))
	log.Info(ctx, "Processing time: %s", time.Since(startTime).Round(time.Millisecond))
	log.Info(ctx, "========================================")

	return nil
}

func (p *implProcessor) transcribe(ctx context.Context, log logger.Logger, runID string, stream *audio.Stream, segments []audio.Segment) (*transcriber.Transcript, error) {
	exchange, err := transcriber.NewDirExchange(p.cfg.Paths.Chunks, runID, p.cfg.Transcription.KeepChunks)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := exchange.Close(); err != nil {
			log.Warn(ctx, "Failed to cleanup chunks %s: %v", exchange.Dir(), err)
		}
	}()

	var observer transcriber.Observer
	if p.observer != nil {
		observer = p.observer
	}

	agg := transcriber.New(p.engine, exchange, transcriber.Options{
		Workers:    p.cfg.Transcription.Workers,
		JobTimeout: p.cfg.Transcription.JobTimeout,
		Deadline:   p.cfg.Transcription.Deadline,
	}, log, observer)

	transcript, err := agg.Run(ctx, stream, segments)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	return transcript, nil
}

func (p *implProcessor) writeTranscript(ctx context.Context, log logger.Logger, name, dir string, transcript *transcriber.Transcript) error {
	txtPath := filepath.Join(dir, "transcript.txt")
	if err := os.WriteFile(txtPath, []byte(transcript.Text()+"\n"), 0644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	docxPath := filepath.Join(dir, "transcript.docx")
	if err := minutes.TranscriptToDocx(name+" - Transcript", transcript.Results, docxPath); err != nil {
		log.Warn(ctx, "Failed to render transcript docx: %v", err)
	}

	log.Info(ctx, "Transcript saved: %s", txtPath)
	return nil
}
