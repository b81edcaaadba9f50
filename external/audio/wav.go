package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/foxseedlab/zumka/internal/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

type wavFormatChunk struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// WAVFileSource streams the data chunk of a 16-bit PCM RIFF/WAVE file.
type WAVFileSource struct {
	file   *os.File
	chunks chunkReader
	format audio.Format
}

func OpenWAVFile(path string, chunkSize int) (*WAVFileSource, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	format, dataSize, err := readWAVHeader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &WAVFileSource{
		file:   f,
		chunks: chunkReader{r: io.LimitReader(f, int64(dataSize)), size: chunkSize},
		format: format,
	}, nil
}

// readWAVHeader leaves r positioned at the first byte of the data chunk.
func readWAVHeader(r io.Reader) (audio.Format, uint32, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return audio.Format{}, 0, fmt.Errorf("invalid WAV file: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return audio.Format{}, 0, fmt.Errorf("invalid WAV file: missing RIFF/WAVE header")
	}

	var (
		fmtChunk wavFormatChunk
		haveFmt  bool
	)
	for {
		var id [4]byte
		var size uint32
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return audio.Format{}, 0, fmt.Errorf("invalid WAV file: missing data chunk")
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return audio.Format{}, 0, fmt.Errorf("invalid WAV file: truncated chunk header")
		}

		switch string(id[:]) {
		case "fmt ":
			if size < 16 {
				return audio.Format{}, 0, fmt.Errorf("invalid WAV file: fmt chunk too short (%d bytes)", size)
			}
			if err := binary.Read(r, binary.LittleEndian, &fmtChunk); err != nil {
				return audio.Format{}, 0, fmt.Errorf("invalid WAV file: %w", err)
			}
			if err := skip(r, int64(size-16)+int64(size&1)); err != nil {
				return audio.Format{}, 0, err
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return audio.Format{}, 0, fmt.Errorf("invalid WAV file: data chunk before fmt chunk")
			}
			if fmtChunk.AudioFormat != wavFormatPCM && fmtChunk.AudioFormat != wavFormatExtensible {
				return audio.Format{}, 0, fmt.Errorf("%w: WAV format tag %d (only PCM is supported)", audio.ErrUnsupportedAudio, fmtChunk.AudioFormat)
			}
			if fmtChunk.BitsPerSample != 16 {
				return audio.Format{}, 0, fmt.Errorf("%w: %d-bit WAV (only 16-bit is supported)", audio.ErrUnsupportedAudio, fmtChunk.BitsPerSample)
			}
			return audio.Format{
				SampleRateHertz: int(fmtChunk.SampleRate),
				ChannelCount:    int(fmtChunk.NumChannels),
			}, size, nil
		default:
			if err := skip(r, int64(size)+int64(size&1)); err != nil {
				return audio.Format{}, 0, err
			}
		}
	}
}

func skip(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return fmt.Errorf("invalid WAV file: truncated chunk: %w", err)
	}
	return nil
}

func (s *WAVFileSource) Format() audio.Format {
	return s.format
}

func (s *WAVFileSource) Next(ctx context.Context) ([]byte, error) {
	return s.chunks.next(ctx)
}

func (s *WAVFileSource) Close() error {
	return s.file.Close()
}
