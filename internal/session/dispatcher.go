package session

import (
	"log/slog"

	"github.com/foxseedlab/zumka/internal/metrics"
	"github.com/foxseedlab/zumka/internal/transcriber"
)

const (
	EventPartial         = "partial"
	EventFinal           = "final"
	EventFinalRefinement = "final_refinement"
	EventEndOfUtterance  = "eou_update"
)

// Printer receives every transcript line the dispatcher logs.
type Printer interface {
	PrintResult(eventType, text string)
}

type Dispatcher struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	printer Printer
}

func NewDispatcher(logger *slog.Logger, m *metrics.Metrics, printer Printer) *Dispatcher {
	return &Dispatcher{logger: logger, metrics: m, printer: printer}
}

func (d *Dispatcher) Dispatch(event transcriber.Event) {
	switch e := event.(type) {
	case transcriber.Partial:
		d.emit(EventPartial, e.Alternatives)
	case transcriber.Final:
		d.emit(EventFinal, e.Alternatives)
	case transcriber.FinalRefinement:
		d.emit(EventFinalRefinement, e.Alternatives)
	case transcriber.EndOfUtterance:
		d.metrics.Responses.WithLabelValues(EventEndOfUtterance).Inc()
		d.logger.Debug("end of utterance", "time_ms", e.TimeMs)
	case transcriber.Other:
		d.metrics.Responses.WithLabelValues(e.Kind).Inc()
	}
}

// emit surfaces only the top-ranked alternative.
func (d *Dispatcher) emit(eventType string, alternatives []transcriber.Alternative) {
	d.metrics.Responses.WithLabelValues(eventType).Inc()
	if len(alternatives) == 0 {
		return
	}
	text := alternatives[0].Text
	if text == "" {
		return
	}
	d.logger.Info("recognition result", "type", eventType, "text", text)
	if d.printer != nil {
		d.printer.PrintResult(eventType, text)
	}
}
