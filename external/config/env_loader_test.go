package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithAPIKey(t *testing.T) {
	t.Setenv("YANDEX_API_KEY", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "stt.api.cloud.yandex.net" || cfg.Port != 443 {
		t.Fatalf("unexpected endpoint: %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.SampleRateHertz != 8000 || cfg.ChunkSize != 4000 || cfg.RecordSeconds != 14 {
		t.Fatalf("unexpected audio defaults: %+v", cfg)
	}
	if cfg.Language != "ru-RU" || cfg.ProcessingMode != "real_time" {
		t.Fatalf("unexpected recognition defaults: %+v", cfg)
	}
	if !cfg.TextNormalization || !cfg.ProfanityFilter || cfg.LiteratureText {
		t.Fatalf("unexpected normalization defaults: %+v", cfg)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("YANDEX_API_KEY", "")
	t.Setenv("YANDEX_IAM_TOKEN", "")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error when api key is missing")
	}
}

func TestLoad_ReadsDotenvFile(t *testing.T) {
	t.Setenv("YANDEX_API_KEY", "")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("YANDEX_API_KEY=from-file\nSTT_LANGUAGE=kk-KZ\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	// godotenv never overrides variables that are already set, including empty ones.
	os.Unsetenv("YANDEX_API_KEY")
	os.Unsetenv("STT_LANGUAGE")
	t.Cleanup(func() {
		os.Unsetenv("YANDEX_API_KEY")
		os.Unsetenv("STT_LANGUAGE")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "from-file" {
		t.Fatalf("expected api key from file, got %q", cfg.APIKey)
	}
	if cfg.Language != "kk-KZ" {
		t.Fatalf("expected language from file, got %q", cfg.Language)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("YANDEX_API_KEY", "secret")
	t.Setenv("STT_PORT", "not-a-number")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected parse error for invalid port")
	}
}

func TestLoad_RejectsRecordingShorterThanOneChunk(t *testing.T) {
	t.Setenv("YANDEX_API_KEY", "secret")
	t.Setenv("STT_SAMPLE_RATE_HERTZ", "8000")
	t.Setenv("STT_RECORD_SECONDS", "1")
	t.Setenv("STT_CHUNK_SIZE", "16000")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected validation error when no full chunk fits in the recording")
	}
}
