package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/foxseedlab/zumka/internal/audio"
	"github.com/foxseedlab/zumka/internal/config"
	"github.com/foxseedlab/zumka/internal/metrics"
	"github.com/foxseedlab/zumka/internal/transcriber"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrInterrupted marks a session the user stopped. It is a clean exit.
var ErrInterrupted = errors.New("session interrupted by user")

// Runner drives one recognition session at a time from audio source to
// dispatched results.
type Runner struct {
	cfg        *config.Config
	dialer     transcriber.Dialer
	dispatcher *Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger

	mu    sync.Mutex
	state State
}

func NewRunner(cfg *config.Config, dialer transcriber.Dialer, dispatcher *Dispatcher, m *metrics.Metrics, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:        cfg,
		dialer:     dialer,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
		state:      StateIdle,
	}
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(logger *slog.Logger, next State) {
	r.mu.Lock()
	prev := r.state
	r.state = next
	r.mu.Unlock()
	logger.Debug("session state changed", "from", prev.String(), "to", next.String())
}

// Run opens the audio source, streams it to the recognizer and dispatches
// every response until the server ends the stream, ctx is cancelled, or an
// error occurs. The channel is closed exactly once on every path.
func (r *Runner) Run(ctx context.Context, open audio.Opener) error {
	sessionID := uuid.NewString()
	logger := r.logger.With("session_id", sessionID)
	r.setState(logger, StateIdle)

	token := audio.NewToken()
	src, err := open(token)
	if err != nil {
		token.Stop()
		r.setState(logger, StateTerminated)
		return r.outcome(ctx, logger, fmt.Errorf("open audio source: %w", err))
	}
	format := src.Format()
	logger.Info("audio source opened", "sample_rate_hertz", format.SampleRateHertz, "channel_count", format.ChannelCount, "chunk_size", r.cfg.ChunkSize)

	r.setState(logger, StateConnecting)
	conn, err := r.dialer.Dial(ctx)
	if err != nil {
		token.Stop()
		closeSource(logger, src)
		r.setState(logger, StateTerminated)
		return r.outcome(ctx, logger, fmt.Errorf("connect to %s: %w", r.cfg.Address(), err))
	}
	defer func() {
		r.setState(logger, StateClosing)
		token.Stop()
		closeSource(logger, src)
		if err := conn.Close(); err != nil {
			logger.Warn("failed to close secure channel", "error", err, "address", conn.Address())
		}
		logger.Info("secure channel closed", "address", conn.Address())
		r.setState(logger, StateTerminated)
	}()

	recognition := r.recognitionConfig(format)
	return r.outcome(ctx, logger, r.stream(ctx, logger, conn, sessionID, token, NewRequestProducer(recognition, src)))
}

func (r *Runner) stream(ctx context.Context, logger *slog.Logger, conn transcriber.Connection, sessionID string, token *audio.Token, producer *RequestProducer) error {
	streamCtx, cancelStream := context.WithCancel(ctx)
	defer cancelStream()

	stream, err := conn.RecognizeStreaming(streamCtx, sessionID)
	if err != nil {
		return fmt.Errorf("start recognition stream: %w", err)
	}
	r.setState(logger, StateStreaming)
	logger.Info("recognition stream started", "address", conn.Address())

	g, sendCtx := errgroup.WithContext(streamCtx)
	g.Go(func() error {
		if err := r.send(sendCtx, logger, stream, producer); err != nil {
			cancelStream()
			return err
		}
		return nil
	})

	recvErr := r.receive(stream)
	token.Stop()
	if recvErr != nil {
		cancelStream()
	}
	sendErr := g.Wait()
	if sendErr != nil && !errors.Is(sendErr, context.Canceled) {
		return sendErr
	}
	return recvErr
}

func (r *Runner) send(ctx context.Context, logger *slog.Logger, stream transcriber.Stream, producer *RequestProducer) error {
	var chunks int
	for {
		req, err := producer.Next(ctx)
		if errors.Is(err, io.EOF) {
			logger.Info("audio stream finished", "chunks", chunks)
			return stream.CloseSend()
		}
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}
		if err := stream.Send(req); err != nil {
			// The stream is already gone; Recv reports the real status.
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("send request: %w", err)
		}
		if chunk, ok := req.(transcriber.Chunk); ok {
			chunks++
			r.metrics.ChunksSent.Inc()
			r.metrics.BytesSent.Add(float64(len(chunk.Data)))
		}
	}
}

func (r *Runner) receive(stream transcriber.Stream) error {
	for {
		event, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event)
	}
}

func (r *Runner) outcome(ctx context.Context, logger *slog.Logger, err error) error {
	if err == nil {
		logger.Info("speech recognition completed")
		return nil
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled) {
		logger.Info("user interruption")
		return ErrInterrupted
	}
	if st, ok := status.FromError(err); ok {
		r.metrics.SessionErrors.WithLabelValues(st.Code().String()).Inc()
		logger.Error("gRPC error", "code", st.Code().String(), "error", st.Message())
		if st.Code() == codes.Unauthenticated {
			logger.Error("authentication failed, check your API key")
		}
		return err
	}
	r.metrics.SessionErrors.WithLabelValues("client").Inc()
	logger.Error("session failed", "error", err)
	return err
}

func (r *Runner) recognitionConfig(format audio.Format) transcriber.RecognitionConfig {
	mode := transcriber.ProcessingRealTime
	if r.cfg.ProcessingMode == config.ProcessingModeFullData {
		mode = transcriber.ProcessingFullData
	}
	return transcriber.NewRecognitionConfig(
		transcriber.AudioFormat{
			Encoding:        transcriber.EncodingLinear16PCM,
			SampleRateHertz: format.SampleRateHertz,
			ChannelCount:    format.ChannelCount,
		},
		transcriber.TextNormalization{
			Enabled:         r.cfg.TextNormalization,
			ProfanityFilter: r.cfg.ProfanityFilter,
			LiteratureText:  r.cfg.LiteratureText,
		},
		[]string{r.cfg.Language},
		mode,
	)
}

func closeSource(logger *slog.Logger, src audio.Source) {
	if err := src.Close(); err != nil {
		logger.Warn("failed to close audio source", "error", err)
	}
}

// ExitCode maps a Run result to the process exit status.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrInterrupted) {
		return 0
	}
	return 1
}
