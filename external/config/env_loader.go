package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/zumka/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env               string `env:"ENV" envDefault:"production"`
	LogFormat         string `env:"LOG_FORMAT" envDefault:"json"`
	APIKey            string `env:"YANDEX_API_KEY"`
	IAMToken          string `env:"YANDEX_IAM_TOKEN"`
	Host              string `env:"STT_HOST" envDefault:"stt.api.cloud.yandex.net"`
	Port              int    `env:"STT_PORT" envDefault:"443"`
	Language          string `env:"STT_LANGUAGE" envDefault:"ru-RU"`
	SampleRateHertz   int    `env:"STT_SAMPLE_RATE_HERTZ" envDefault:"8000"`
	ChannelCount      int    `env:"STT_CHANNEL_COUNT" envDefault:"1"`
	ChunkSize         int    `env:"STT_CHUNK_SIZE" envDefault:"4000"`
	RecordSeconds     int    `env:"STT_RECORD_SECONDS" envDefault:"14"`
	TextNormalization bool   `env:"STT_TEXT_NORMALIZATION" envDefault:"true"`
	ProfanityFilter   bool   `env:"STT_PROFANITY_FILTER" envDefault:"true"`
	LiteratureText    bool   `env:"STT_LITERATURE_TEXT" envDefault:"false"`
	ProcessingMode    string `env:"STT_PROCESSING_MODE" envDefault:"real_time"`
	MetricsAddr       string `env:"METRICS_ADDR"`
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already present in the environment win.
func Load(dotenvFiles ...string) (*internalconfig.Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:               raw.Env,
		LogFormat:         raw.LogFormat,
		APIKey:            raw.APIKey,
		IAMToken:          raw.IAMToken,
		Host:              raw.Host,
		Port:              raw.Port,
		Language:          raw.Language,
		SampleRateHertz:   raw.SampleRateHertz,
		ChannelCount:      raw.ChannelCount,
		ChunkSize:         raw.ChunkSize,
		RecordSeconds:     raw.RecordSeconds,
		TextNormalization: raw.TextNormalization,
		ProfanityFilter:   raw.ProfanityFilter,
		LiteratureText:    raw.LiteratureText,
		ProcessingMode:    raw.ProcessingMode,
		MetricsAddr:       raw.MetricsAddr,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
