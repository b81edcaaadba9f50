package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/foxseedlab/zumka/internal/audio"
	"github.com/foxseedlab/zumka/internal/config"
	"github.com/foxseedlab/zumka/internal/metrics"
	"github.com/foxseedlab/zumka/internal/transcriber"
)

type sliceSource struct {
	chunks  [][]byte
	failAt  int
	failErr error
	closed  int
	format  audio.Format
}

func newSliceSource(chunks ...[]byte) *sliceSource {
	return &sliceSource{
		chunks: chunks,
		failAt: -1,
		format: audio.Format{SampleRateHertz: 8000, ChannelCount: 1},
	}
}

func (s *sliceSource) Format() audio.Format { return s.format }

func (s *sliceSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failAt == 0 {
		return nil, s.failErr
	}
	if len(s.chunks) == 0 {
		return nil, io.EOF
	}
	s.failAt--
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *sliceSource) Close() error {
	s.closed++
	return nil
}

type blockingSource struct {
	format audio.Format
}

func (s *blockingSource) Format() audio.Format { return s.format }

func (s *blockingSource) Next(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *blockingSource) Close() error { return nil }

// fakeStream replays scripted events. Once the script is exhausted it returns
// recvErr, or waits for CloseSend and reports io.EOF like a server that has
// flushed its last result.
type fakeStream struct {
	ctx       context.Context
	events    []transcriber.Event
	recvErr   error
	blockRecv bool

	mu        sync.Mutex
	requests  []transcriber.Request
	closeSent chan struct{}
	closeOnce sync.Once
}

func (s *fakeStream) Send(req transcriber.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return nil
}

func (s *fakeStream) CloseSend() error {
	s.closeOnce.Do(func() { close(s.closeSent) })
	return nil
}

func (s *fakeStream) Recv() (transcriber.Event, error) {
	s.mu.Lock()
	if len(s.events) > 0 {
		ev := s.events[0]
		s.events = s.events[1:]
		s.mu.Unlock()
		return ev, nil
	}
	s.mu.Unlock()
	if s.recvErr != nil {
		return nil, s.recvErr
	}
	if s.blockRecv {
		<-s.ctx.Done()
		return nil, s.ctx.Err()
	}
	select {
	case <-s.closeSent:
		return nil, io.EOF
	case <-s.ctx.Done():
		return nil, s.ctx.Err()
	}
}

func (s *fakeStream) sent() []transcriber.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transcriber.Request(nil), s.requests...)
}

type fakeConnection struct {
	stream     *fakeStream
	streamErr  error
	closeCount int
	requestID  string
}

func (c *fakeConnection) RecognizeStreaming(ctx context.Context, requestID string) (transcriber.Stream, error) {
	c.requestID = requestID
	if c.streamErr != nil {
		return nil, c.streamErr
	}
	c.stream.ctx = ctx
	return c.stream, nil
}

func (c *fakeConnection) Address() string { return "stt.test:443" }

func (c *fakeConnection) Close() error {
	c.closeCount++
	return nil
}

type fakeDialer struct {
	conn    *fakeConnection
	dialErr error
	dials   int
}

func (d *fakeDialer) Dial(_ context.Context) (transcriber.Connection, error) {
	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.conn, nil
}

func newFakeDialer(events []transcriber.Event, recvErr error) *fakeDialer {
	return &fakeDialer{conn: &fakeConnection{stream: &fakeStream{
		events:    events,
		recvErr:   recvErr,
		closeSent: make(chan struct{}),
	}}}
}

type recordingPrinter struct {
	lines []string
}

func (p *recordingPrinter) PrintResult(eventType, text string) {
	p.lines = append(p.lines, eventType+":"+text)
}

func testConfig() *config.Config {
	return &config.Config{
		Env:               "test",
		LogFormat:         config.LogFormatJSON,
		APIKey:            "key",
		Host:              "stt.test",
		Port:              443,
		Language:          "ru-RU",
		SampleRateHertz:   8000,
		ChannelCount:      1,
		ChunkSize:         4000,
		RecordSeconds:     14,
		TextNormalization: true,
		ProfanityFilter:   true,
		ProcessingMode:    config.ProcessingModeRealTime,
	}
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

type logRecord map[string]any

func readLogs(t *testing.T, buf *bytes.Buffer) []logRecord {
	t.Helper()
	var out []logRecord
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec logRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("failed to decode log line %q: %v", line, err)
		}
		out = append(out, rec)
	}
	return out
}

func findLogs(records []logRecord, msg string) []logRecord {
	var out []logRecord
	for _, r := range records {
		if r["msg"] == msg {
			out = append(out, r)
		}
	}
	return out
}

func newTestRunner(dialer *fakeDialer) (*Runner, *metrics.Metrics, *bytes.Buffer) {
	logger, buf := newTestLogger()
	m := metrics.New()
	dispatcher := NewDispatcher(logger, m, nil)
	return NewRunner(testConfig(), dialer, dispatcher, m, logger), m, buf
}

func openSource(src audio.Source) audio.Opener {
	return func(_ *audio.Token) (audio.Source, error) {
		return src, nil
	}
}
