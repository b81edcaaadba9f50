package microphone

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foxseedlab/zumka/internal/audio"
	"github.com/foxseedlab/zumka/internal/metrics"
	"github.com/gordonklaus/portaudio"
)

const DefaultDevice = -1

type Options struct {
	DeviceID        int
	SampleRateHertz int
	ChannelCount    int
	// ChunkSize is the number of frames per capture block.
	ChunkSize int
	MaxChunks int
}

// ListDevices returns every host audio device in PortAudio index order.
func ListDevices() ([]audio.DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	return toDeviceInfos(devices), nil
}

func toDeviceInfos(devices []*portaudio.DeviceInfo) []audio.DeviceInfo {
	out := make([]audio.DeviceInfo, 0, len(devices))
	for i, d := range devices {
		out = append(out, audio.DeviceInfo{
			Index:             i,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		})
	}
	return out
}

// CheckDevice logs the available devices and fails when deviceID is past the
// end of the list.
func CheckDevice(logger *slog.Logger, deviceID int) error {
	devices, err := ListDevices()
	if err != nil {
		return err
	}
	logger.Debug("available speech capture devices", "count", len(devices))
	for _, d := range devices {
		logger.Info("capture device", "index", d.Index, "name", d.Name, "max_input_channels", d.MaxInputChannels)
	}
	return validateDeviceID(devices, deviceID)
}

func validateDeviceID(devices []audio.DeviceInfo, deviceID int) error {
	if deviceID >= len(devices) {
		return fmt.Errorf("device with ID %d: %w", deviceID, audio.ErrDeviceNotFound)
	}
	return nil
}

// Source captures from a PortAudio input stream. It owns the PortAudio
// session and terminates it on Close.
type Source struct {
	*audio.CaptureSource

	stream    *portaudio.Stream
	closeOnce sync.Once
	closeErr  error
}

func Open(logger *slog.Logger, opts Options, token *audio.Token, m *metrics.Metrics) (*Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	device, err := resolveDevice(opts.DeviceID)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	logger.Debug("capture device in use",
		"name", device.Name,
		"default_device", opts.DeviceID < 0,
		"sample_rate_hertz", opts.SampleRateHertz,
		"block_size", opts.ChunkSize,
		"channel_count", opts.ChannelCount,
	)

	capture := audio.NewCaptureSource(token, audio.CaptureOptions{
		Format: audio.Format{
			SampleRateHertz: opts.SampleRateHertz,
			ChannelCount:    opts.ChannelCount,
		},
		MaxChunks: opts.MaxChunks,
		OnDrop: func() {
			m.CaptureDroppedBlocks.Inc()
		},
	})

	params := portaudio.LowLatencyParameters(device, nil)
	params.Input.Channels = opts.ChannelCount
	params.SampleRate = float64(opts.SampleRateHertz)
	params.FramesPerBuffer = opts.ChunkSize

	buf := make([]byte, opts.ChunkSize*opts.ChannelCount*2)
	stream, err := portaudio.OpenStream(params, func(in []int16) {
		capture.Push(samplesToBytes(buf, in))
	})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start capture stream: %w", err)
	}

	return &Source{CaptureSource: capture, stream: stream}, nil
}

func resolveDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID < 0 {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("default input device: %w", err)
		}
		return device, nil
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	if err := validateDeviceID(toDeviceInfos(devices), deviceID); err != nil {
		return nil, err
	}
	return devices[deviceID], nil
}

// samplesToBytes writes in as little-endian PCM into dst, growing it if needed.
func samplesToBytes(dst []byte, in []int16) []byte {
	n := len(in) * 2
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, s := range in {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s))
	}
	return dst
}

func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(s.stream.Stop(), s.stream.Close(), portaudio.Terminate())
	})
	return s.closeErr
}
