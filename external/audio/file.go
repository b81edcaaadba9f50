package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/foxseedlab/zumka/internal/audio"
)

// OpenFile picks a decoder by extension. Anything that is not WAV or Ogg/Opus
// is streamed as headerless PCM in rawFormat.
func OpenFile(path string, chunkSize int, rawFormat audio.Format) (audio.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("audio file not found at %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("audio file not found at %s: is a directory", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		src, err := OpenWAVFile(path, chunkSize)
		if err != nil {
			return nil, err
		}
		return src, nil
	case ".ogg", ".opus":
		return OpenOpusFile(path, chunkSize)
	default:
		src, err := OpenRawFile(path, chunkSize, rawFormat)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

type chunkReader struct {
	r    io.Reader
	size int
}

func (c *chunkReader) next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, c.size)
	n, err := io.ReadFull(c.r, buf)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return buf[:n], nil
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("read audio chunk: %w", err)
	}
}

type RawFileSource struct {
	file   *os.File
	chunks chunkReader
	format audio.Format
}

func OpenRawFile(path string, chunkSize int, format audio.Format) (*RawFileSource, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	return &RawFileSource{
		file:   f,
		chunks: chunkReader{r: f, size: chunkSize},
		format: format,
	}, nil
}

func (s *RawFileSource) Format() audio.Format {
	return s.format
}

func (s *RawFileSource) Next(ctx context.Context) ([]byte, error) {
	return s.chunks.next(ctx)
}

func (s *RawFileSource) Close() error {
	return s.file.Close()
}
