package audio

import (
	"context"
	"io"
	"sync/atomic"
	"time"
)

const (
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultQueueCapacity = 64
)

type CaptureOptions struct {
	Format        Format
	MaxChunks     int
	QueueCapacity int
	PollInterval  time.Duration
	OnDrop        func()
}

// CaptureSource turns blocks pushed by an audio callback into a Source.
// Push is the only producer and Next the only consumer.
type CaptureSource struct {
	format    Format
	queue     chan []byte
	token     *Token
	maxChunks int
	poll      time.Duration
	onDrop    func()

	emitted int
	dropped atomic.Int64
}

func NewCaptureSource(token *Token, opts CaptureOptions) *CaptureSource {
	capacity := opts.QueueCapacity
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &CaptureSource{
		format:    opts.Format,
		queue:     make(chan []byte, capacity),
		token:     token,
		maxChunks: opts.MaxChunks,
		poll:      poll,
		onDrop:    opts.OnDrop,
	}
}

func (s *CaptureSource) Format() Format {
	return s.format
}

// Push enqueues a copy of block. It never blocks: when the queue is full the
// block is dropped.
func (s *CaptureSource) Push(block []byte) {
	if len(block) == 0 || !s.token.Live() {
		return
	}
	data := make([]byte, len(block))
	copy(data, block)
	select {
	case s.queue <- data:
	default:
		s.dropped.Add(1)
		if s.onDrop != nil {
			s.onDrop()
		}
	}
}

func (s *CaptureSource) Next(ctx context.Context) ([]byte, error) {
	timer := time.NewTimer(s.poll)
	defer timer.Stop()
	for {
		if !s.token.Live() {
			return nil, io.EOF
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.token.Done():
			return nil, io.EOF
		case data := <-s.queue:
			if !s.token.Live() {
				return nil, io.EOF
			}
			s.emitted++
			if s.maxChunks > 0 && s.emitted >= s.maxChunks {
				s.token.Stop()
			}
			return data, nil
		case <-timer.C:
			timer.Reset(s.poll)
		}
	}
}

func (s *CaptureSource) Emitted() int {
	return s.emitted
}

func (s *CaptureSource) Dropped() int64 {
	return s.dropped.Load()
}

func (s *CaptureSource) Close() error {
	return nil
}
