package config

import (
	"fmt"
	"net"
	"strconv"
)

const (
	ProcessingModeRealTime = "real_time"
	ProcessingModeFullData = "full_data"

	LogFormatJSON = "json"
	LogFormatText = "text"
)

type Config struct {
	Env               string
	LogFormat         string
	APIKey            string
	IAMToken          string
	Host              string
	Port              int
	Language          string
	SampleRateHertz   int
	ChannelCount      int
	ChunkSize         int
	RecordSeconds     int
	TextNormalization bool
	ProfanityFilter   bool
	LiteratureText    bool
	ProcessingMode    string
	MetricsAddr       string
}

func (c *Config) Validate() error {
	if c.APIKey == "" && c.IAMToken == "" {
		return fmt.Errorf("YANDEX_API_KEY is required")
	}
	if c.APIKey != "" && c.IAMToken != "" {
		return fmt.Errorf("YANDEX_API_KEY and YANDEX_IAM_TOKEN are mutually exclusive")
	}
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("STT_PORT must be in 1..65535, got %d", c.Port)
	}
	for _, p := range c.positiveFieldChecks() {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}
	if c.MaxChunks() < 1 {
		return fmt.Errorf("STT_SAMPLE_RATE_HERTZ * STT_RECORD_SECONDS must be at least STT_CHUNK_SIZE, got %d * %d < %d", c.SampleRateHertz, c.RecordSeconds, c.ChunkSize)
	}
	switch c.ProcessingMode {
	case ProcessingModeRealTime, ProcessingModeFullData:
	default:
		return fmt.Errorf("STT_PROCESSING_MODE must be %q or %q, got %q", ProcessingModeRealTime, ProcessingModeFullData, c.ProcessingMode)
	}
	switch c.LogFormat {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatText, c.LogFormat)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "STT_HOST", value: c.Host},
		{name: "STT_LANGUAGE", value: c.Language},
	}
}

type positiveEnvField struct {
	name  string
	value int
}

func (c *Config) positiveFieldChecks() []positiveEnvField {
	return []positiveEnvField{
		{name: "STT_SAMPLE_RATE_HERTZ", value: c.SampleRateHertz},
		{name: "STT_CHANNEL_COUNT", value: c.ChannelCount},
		{name: "STT_CHUNK_SIZE", value: c.ChunkSize},
		{name: "STT_RECORD_SECONDS", value: c.RecordSeconds},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MaxChunks is the number of capture blocks after which microphone capture stops.
func (c *Config) MaxChunks() int {
	return c.SampleRateHertz * c.RecordSeconds / c.ChunkSize
}
