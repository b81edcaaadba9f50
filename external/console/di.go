package console

import (
	"os"

	"github.com/foxseedlab/zumka/internal/session"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (session.Printer, error) {
		return NewPrinter(os.Stdout), nil
	})
}
