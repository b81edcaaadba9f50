package transcriber

import "slices"

type Encoding int

const (
	EncodingLinear16PCM Encoding = iota + 1
)

func (e Encoding) String() string {
	switch e {
	case EncodingLinear16PCM:
		return "LINEAR16_PCM"
	default:
		return "UNSPECIFIED"
	}
}

type ProcessingMode int

const (
	ProcessingRealTime ProcessingMode = iota + 1
	ProcessingFullData
)

func (m ProcessingMode) String() string {
	switch m {
	case ProcessingRealTime:
		return "real_time"
	case ProcessingFullData:
		return "full_data"
	default:
		return "unspecified"
	}
}

type AudioFormat struct {
	Encoding        Encoding
	SampleRateHertz int
	ChannelCount    int
}

type TextNormalization struct {
	Enabled         bool
	ProfanityFilter bool
	LiteratureText  bool
}

// RecognitionConfig describes a streaming session. It is built once and never
// mutated; accessors hand out copies.
type RecognitionConfig struct {
	audio         AudioFormat
	normalization TextNormalization
	languages     []string
	mode          ProcessingMode
}

func NewRecognitionConfig(audio AudioFormat, normalization TextNormalization, languages []string, mode ProcessingMode) RecognitionConfig {
	return RecognitionConfig{
		audio:         audio,
		normalization: normalization,
		languages:     slices.Clone(languages),
		mode:          mode,
	}
}

func (c RecognitionConfig) Audio() AudioFormat {
	return c.audio
}

func (c RecognitionConfig) Normalization() TextNormalization {
	return c.normalization
}

func (c RecognitionConfig) Languages() []string {
	return slices.Clone(c.languages)
}

func (c RecognitionConfig) Mode() ProcessingMode {
	return c.mode
}
