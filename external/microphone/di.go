package microphone

import (
	"log/slog"

	"github.com/foxseedlab/zumka/internal/audio"
	"github.com/foxseedlab/zumka/internal/config"
	"github.com/foxseedlab/zumka/internal/metrics"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audio.MicrophoneOpenerFactory, error) {
		c := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		m := do.MustInvoke[*metrics.Metrics](i)
		return func(deviceID int) audio.Opener {
			return func(token *audio.Token) (audio.Source, error) {
				src, err := Open(logger, Options{
					DeviceID:        deviceID,
					SampleRateHertz: c.SampleRateHertz,
					ChannelCount:    c.ChannelCount,
					ChunkSize:       c.ChunkSize,
					MaxChunks:       c.MaxChunks(),
				}, token, m)
				if err != nil {
					return nil, err
				}
				return src, nil
			}
		}, nil
	})
}
