package audio

import (
	"github.com/foxseedlab/zumka/internal/audio"
	"github.com/foxseedlab/zumka/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audio.FileOpenerFactory, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rawFormat := audio.Format{SampleRateHertz: cfg.SampleRateHertz, ChannelCount: cfg.ChannelCount}
		return func(path string) audio.Opener {
			return func(_ *audio.Token) (audio.Source, error) {
				return OpenFile(path, cfg.ChunkSize, rawFormat)
			}
		}, nil
	})
}
