//go:build opus

package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/foxseedlab/zumka/internal/audio"
	"github.com/hraban/opus"
)

const (
	opusSampleRate = 48000
	opusChannels   = 1

	// 120 ms is the longest frame an Opus packet can carry.
	opusMaxFrameSamples = opusSampleRate * 120 / 1000
)

// OpusFileSource decodes an Ogg/Opus file into 48 kHz mono PCM. Every file is
// decoded as interleaved stereo and then downmixed, whatever its channel
// layout.
type OpusFileSource struct {
	file      *os.File
	stream    *opus.Stream
	chunkSize int
	pcm       []int16
	pending   []byte
	eof       bool
}

func OpenOpusFile(path string, chunkSize int) (audio.Source, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	stream, err := opus.NewStream(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %v", audio.ErrUnsupportedAudio, path, err)
	}
	return &OpusFileSource{
		file:      f,
		stream:    stream,
		chunkSize: chunkSize,
		pcm:       make([]int16, opusMaxFrameSamples*2),
	}, nil
}

func (s *OpusFileSource) Format() audio.Format {
	return audio.Format{SampleRateHertz: opusSampleRate, ChannelCount: opusChannels}
}

func (s *OpusFileSource) Next(ctx context.Context) ([]byte, error) {
	for !s.eof && len(s.pending) < s.chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := s.stream.ReadStereo(s.pcm)
		if errors.Is(err, io.EOF) {
			s.eof = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode opus: %w", err)
		}
		s.pending = appendDownmixedStereo(s.pending, s.pcm[:n*2])
	}
	if len(s.pending) == 0 {
		return nil, io.EOF
	}
	size := min(s.chunkSize, len(s.pending))
	chunk := make([]byte, size)
	copy(chunk, s.pending[:size])
	s.pending = s.pending[size:]
	return chunk, nil
}

func (s *OpusFileSource) Close() error {
	streamErr := s.stream.Close()
	fileErr := s.file.Close()
	return errors.Join(streamErr, fileErr)
}
