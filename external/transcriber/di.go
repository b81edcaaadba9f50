package transcriber

import (
	"log/slog"

	"github.com/foxseedlab/zumka/internal/config"
	"github.com/foxseedlab/zumka/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Dialer, error) {
		c := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		return NewSpeechKitDialer(SpeechKitConfig{
			Host:     c.Host,
			Port:     c.Port,
			APIKey:   c.APIKey,
			IAMToken: c.IAMToken,
		}, logger), nil
	})
}
