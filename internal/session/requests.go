package session

import (
	"context"

	"github.com/foxseedlab/zumka/internal/audio"
	"github.com/foxseedlab/zumka/internal/transcriber"
)

// RequestProducer yields the outbound stream: one SessionOptions message,
// then one Chunk per audio block in source order. It ends with io.EOF when the
// source does.
type RequestProducer struct {
	config  transcriber.RecognitionConfig
	source  audio.Source
	started bool
}

func NewRequestProducer(cfg transcriber.RecognitionConfig, src audio.Source) *RequestProducer {
	return &RequestProducer{config: cfg, source: src}
}

func (p *RequestProducer) Next(ctx context.Context) (transcriber.Request, error) {
	if !p.started {
		p.started = true
		return transcriber.SessionOptions{Config: p.config}, nil
	}
	data, err := p.source.Next(ctx)
	if err != nil {
		return nil, err
	}
	return transcriber.Chunk{Data: data}, nil
}
