package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// wavHeader is the canonical 44 byte PCM header written by EncodeWAV
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

type wavFormat struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// EncodeWAV encodes a stream as a 16-bit PCM WAV file
func EncodeWAV(s *Stream) ([]byte, error) {
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}

	bitsPerSample := uint16(16)
	numChannels := uint16(s.Channels)
	dataSize := uint32(len(s.Samples) * 2)

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   wavFormatPCM,
		NumChannels:   numChannels,
		SampleRate:    uint32(s.SampleRate),
		ByteRate:      uint32(s.SampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8,
		BlockAlign:    numChannels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(s.Samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("write wav header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, s.Samples); err != nil {
		return nil, fmt.Errorf("write wav samples: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeWAV parses a 16-bit PCM WAV file. Chunks other than "fmt " and
// "data" (LIST, fact, ...) are skipped.
func DecodeWAV(data []byte) (*Stream, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("wav data too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" {
		return nil, fmt.Errorf("invalid wav file: missing RIFF header")
	}
	if string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("invalid wav file: missing WAVE format")
	}

	r := bytes.NewReader(data[12:])
	var (
		format  *wavFormat
		samples []int16
		found   bool
	)

	for !found {
		var id [4]byte
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read wav chunk id: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("read wav chunk size: %w", err)
		}

		switch string(id[:]) {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("invalid wav file: fmt chunk of %d bytes", size)
			}
			format = &wavFormat{}
			if err := binary.Read(r, binary.LittleEndian, format); err != nil {
				return nil, fmt.Errorf("read wav format: %w", err)
			}
			if _, err := r.Seek(int64(size-16+size%2), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skip wav format extension: %w", err)
			}
		case "data":
			if format == nil {
				return nil, fmt.Errorf("invalid wav file: data chunk before fmt chunk")
			}
			if err := checkFormat(format); err != nil {
				return nil, err
			}
			// Streaming writers leave the size unset; take what is there.
			if int64(size) > int64(r.Len()) {
				size = uint32(r.Len())
			}
			samples = make([]int16, size/2)
			if err := binary.Read(r, binary.LittleEndian, samples); err != nil {
				return nil, fmt.Errorf("read wav samples: %w", err)
			}
			found = true
		default:
			if _, err := r.Seek(int64(size+size%2), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skip wav chunk %q: %w", id[:], err)
			}
		}
	}

	if !found {
		return nil, fmt.Errorf("invalid wav file: missing data chunk")
	}

	channels := int(format.NumChannels)
	// Drop a trailing partial frame.
	samples = samples[:len(samples)-len(samples)%channels]

	return &Stream{
		Samples:    samples,
		SampleRate: int(format.SampleRate),
		Channels:   channels,
	}, nil
}

func checkFormat(f *wavFormat) error {
	if f.AudioFormat != wavFormatPCM && f.AudioFormat != wavFormatExtensible {
		return fmt.Errorf("unsupported audio format: %d (only PCM is supported)", f.AudioFormat)
	}
	if f.BitsPerSample != 16 {
		return fmt.Errorf("unsupported bit depth: %d (only 16-bit is supported)", f.BitsPerSample)
	}
	if f.NumChannels == 0 {
		return fmt.Errorf("invalid channel count: 0")
	}
	if f.SampleRate == 0 {
		return fmt.Errorf("invalid sample rate: 0")
	}
	return nil
}
