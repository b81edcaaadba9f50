package session

import (
	"log/slog"

	"github.com/foxseedlab/zumka/internal/config"
	"github.com/foxseedlab/zumka/internal/metrics"
	"github.com/foxseedlab/zumka/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Dispatcher, error) {
		logger := do.MustInvoke[*slog.Logger](i)
		m := do.MustInvoke[*metrics.Metrics](i)
		// The console printer is optional; without it results only go to the log.
		printer, _ := do.Invoke[Printer](i)
		return NewDispatcher(logger, m, printer), nil
	})
	do.Provide(injector, func(i do.Injector) (*Runner, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dialer := do.MustInvoke[transcriber.Dialer](i)
		dispatcher := do.MustInvoke[*Dispatcher](i)
		m := do.MustInvoke[*metrics.Metrics](i)
		logger := do.MustInvoke[*slog.Logger](i)
		return NewRunner(cfg, dialer, dispatcher, m, logger), nil
	})
}
