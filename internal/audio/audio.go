package audio

import (
	"context"
	"errors"
)

var (
	ErrDeviceNotFound   = errors.New("capture device not found")
	ErrOpusUnsupported  = errors.New("opus decoding is not compiled in; rebuild with -tags opus")
	ErrUnsupportedAudio = errors.New("unsupported audio format")
)

// Format describes signed 16-bit little-endian PCM.
type Format struct {
	SampleRateHertz int
	ChannelCount    int
}

// Source yields raw PCM chunks in capture or file order. Next returns io.EOF
// once the sequence is exhausted.
type Source interface {
	Format() Format
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// Opener acquires a Source bound to the given session token.
type Opener func(token *Token) (Source, error)

type DeviceInfo struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
}

// FileOpenerFactory binds an audio file path to an Opener.
type FileOpenerFactory func(path string) Opener

// MicrophoneOpenerFactory binds a capture device to an Opener. A negative
// device ID selects the system default input.
type MicrophoneOpenerFactory func(deviceID int) Opener
