package transcriber

import "context"

// Request is one message on the outbound stream: SessionOptions first, then Chunks.
type Request interface {
	isRequest()
}

type SessionOptions struct {
	Config RecognitionConfig
}

type Chunk struct {
	Data []byte
}

func (SessionOptions) isRequest() {}
func (Chunk) isRequest()          {}

type Alternative struct {
	Text       string
	Confidence float64
}

// Event is one message on the inbound stream.
type Event interface {
	isEvent()
}

// Partial is an interim transcript that the service may still revise.
type Partial struct {
	Alternatives []Alternative
	ChannelTag   string
}

// Final is the committed transcript of a completed utterance.
type Final struct {
	Alternatives []Alternative
	ChannelTag   string
}

// FinalRefinement is the normalized rewrite of an earlier Final.
type FinalRefinement struct {
	FinalIndex   int64
	Alternatives []Alternative
	ChannelTag   string
}

type EndOfUtterance struct {
	TimeMs int64
}

// Other covers lifecycle and analysis events the client does not act on.
type Other struct {
	Kind string
}

func (Partial) isEvent()         {}
func (Final) isEvent()           {}
func (FinalRefinement) isEvent() {}
func (EndOfUtterance) isEvent()  {}
func (Other) isEvent()           {}

type Stream interface {
	Send(req Request) error
	CloseSend() error
	Recv() (Event, error)
}

type Connection interface {
	RecognizeStreaming(ctx context.Context, requestID string) (Stream, error)
	Address() string
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context) (Connection, error)
}
