package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config stores runtime configuration for the voice inventory client.
type Config struct {
	Backend  BackendConfig
	Audio    AudioConfig
	Capture  CaptureConfig
	Catalog  CatalogConfig
	Identity IdentityConfig
	Notice   NoticeConfig
	Log      LogConfig
}

type BackendConfig struct {
	BaseURL          string
	UploadTimeout    time.Duration
	RequestTimeout   time.Duration
	RetryMaxAttempts int
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type CaptureConfig struct {
	ChunkInterval   time.Duration
	ReadBufferBytes int
	MinBlobBytes    int
}

type CatalogConfig struct {
	TTL           time.Duration
	PurgeInterval time.Duration
}

type IdentityConfig struct {
	Dir string
}

type NoticeConfig struct {
	Duration time.Duration
}

type LogConfig struct {
	Level string
}

// Load resolves configuration from environment variables and sensible defaults.
func Load() (Config, error) {
	identityDir := strings.TrimSpace(os.Getenv("VOXSTOCK_IDENTITY_DIR"))
	if identityDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		identityDir = filepath.Join(base, "voxstock")
	}

	cfg := Config{
		Backend: BackendConfig{
			BaseURL:          envOrDefault("VOXSTOCK_BACKEND_URL", "http://127.0.0.1:8000"),
			UploadTimeout:    envOrDefaultMillis("VOXSTOCK_UPLOAD_TIMEOUT_MS", 30_000),
			RequestTimeout:   envOrDefaultMillis("VOXSTOCK_REQUEST_TIMEOUT_MS", 10_000),
			RetryMaxAttempts: envOrDefaultInt("VOXSTOCK_RETRY_MAX_ATTEMPTS", 3),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("VOXSTOCK_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("VOXSTOCK_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("VOXSTOCK_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("VOXSTOCK_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("VOXSTOCK_CHANNELS", 1),
		},
		Capture: CaptureConfig{
			ChunkInterval:   envOrDefaultMillis("VOXSTOCK_CHUNK_INTERVAL_MS", 250),
			ReadBufferBytes: envOrDefaultInt("VOXSTOCK_READ_BUFFER_BYTES", 4096),
			MinBlobBytes:    envOrDefaultInt("VOXSTOCK_MIN_BLOB_BYTES", 1024),
		},
		Catalog: CatalogConfig{
			TTL:           envOrDefaultMillis("VOXSTOCK_CATALOG_TTL_MS", 300_000),
			PurgeInterval: envOrDefaultMillis("VOXSTOCK_CATALOG_PURGE_MS", 60_000),
		},
		Identity: IdentityConfig{Dir: identityDir},
		Notice: NoticeConfig{
			Duration: envOrDefaultMillis("VOXSTOCK_NOTICE_DURATION_MS", 3_000),
		},
		Log: LogConfig{Level: envOrDefault("VOXSTOCK_LOG_LEVEL", "info")},
	}

	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.RetryMaxAttempts <= 0 {
		cfg.Backend.RetryMaxAttempts = 3
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Capture.ChunkInterval <= 0 {
		cfg.Capture.ChunkInterval = 250 * time.Millisecond
	}
	if cfg.Capture.ReadBufferBytes < 256 {
		cfg.Capture.ReadBufferBytes = 4096
	}
	if cfg.Capture.MinBlobBytes <= 0 {
		cfg.Capture.MinBlobBytes = 1024
	}
	if cfg.Notice.Duration <= 0 {
		cfg.Notice.Duration = 3 * time.Second
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultMillis(key string, fallback int) time.Duration {
	value := envOrDefaultInt(key, fallback)
	if value < 0 {
		value = fallback
	}
	return time.Duration(value) * time.Millisecond
}
