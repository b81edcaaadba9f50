package transcriber

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/foxseedlab/zumka/internal/transcriber"
	stt "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/stt/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
)

const (
	authorizationHeader   = "authorization"
	clientRequestIDHeader = "x-client-request-id"
)

type SpeechKitConfig struct {
	Host     string
	Port     int
	APIKey   string
	IAMToken string
}

// SpeechKitDialer opens TLS channels to the SpeechKit recognizer. Extra dial
// options are appended after the TLS credentials and may replace them.
type SpeechKitDialer struct {
	address       string
	target        string
	authorization string
	logger        *slog.Logger
	dialOptions   []grpc.DialOption
}

func NewSpeechKitDialer(cfg SpeechKitConfig, logger *slog.Logger, opts ...grpc.DialOption) *SpeechKitDialer {
	address := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	return &SpeechKitDialer{
		address:       address,
		target:        address,
		authorization: authorizationValue(cfg),
		logger:        logger,
		dialOptions:   opts,
	}
}

func authorizationValue(cfg SpeechKitConfig) string {
	if cfg.IAMToken != "" {
		return "Bearer " + cfg.IAMToken
	}
	return "Api-Key " + cfg.APIKey
}

func (d *SpeechKitDialer) Dial(_ context.Context) (transcriber.Connection, error) {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})),
	}, d.dialOptions...)

	conn, err := grpc.NewClient(d.target, opts...)
	if err != nil {
		return nil, fmt.Errorf("create grpc client for %s: %w", d.address, err)
	}
	d.logger.Info("secure channel created", "address", d.address)
	return &speechKitConnection{
		conn:          conn,
		client:        stt.NewRecognizerClient(conn),
		address:       d.address,
		authorization: d.authorization,
	}, nil
}

type speechKitConnection struct {
	conn          *grpc.ClientConn
	client        stt.RecognizerClient
	address       string
	authorization string

	closeOnce sync.Once
	closeErr  error
}

func (c *speechKitConnection) RecognizeStreaming(ctx context.Context, requestID string) (transcriber.Stream, error) {
	ctx = metadata.AppendToOutgoingContext(ctx,
		authorizationHeader, c.authorization,
		clientRequestIDHeader, requestID,
	)
	stream, err := c.client.RecognizeStreaming(ctx)
	if err != nil {
		return nil, err
	}
	return &speechKitStream{stream: stream}, nil
}

func (c *speechKitConnection) Address() string {
	return c.address
}

func (c *speechKitConnection) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

type speechKitStream struct {
	stream stt.Recognizer_RecognizeStreamingClient
}

func (s *speechKitStream) Send(req transcriber.Request) error {
	msg, err := toProtoRequest(req)
	if err != nil {
		return err
	}
	return s.stream.Send(msg)
}

func (s *speechKitStream) CloseSend() error {
	return s.stream.CloseSend()
}

func (s *speechKitStream) Recv() (transcriber.Event, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return nil, err
	}
	return fromProtoResponse(resp), nil
}
