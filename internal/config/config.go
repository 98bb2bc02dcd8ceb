package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"media-transcribe/internal/app/errors"
)

// Config is the resolved runtime configuration for one invocation.
type Config struct {
	Engine   string `yaml:"engine" validate:"required,oneof=whisper_cpp openai gemini"`
	Language string `yaml:"language" validate:"required"`
	TempDir  string `yaml:"temp_dir"`

	FFmpeg     FFmpegConfig     `yaml:"ffmpeg"`
	WhisperCpp WhisperCppConfig `yaml:"whisper_cpp"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
}

// FFmpegConfig locates the codec toolchain and fixes the normalized output shape.
type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path" validate:"required"`
	FFprobePath string `yaml:"ffprobe_path" validate:"required"`
	SampleRate  int    `yaml:"sample_rate" validate:"min=8000,max=48000"`
	Channels    int    `yaml:"channels" validate:"oneof=1 2"`
}

// WhisperCppConfig configures the local whisper.cpp engine.
type WhisperCppConfig struct {
	BinaryPath string `yaml:"binary_path" validate:"required"`
	ModelsDir  string `yaml:"models_dir" validate:"required"`
	Threads    int    `yaml:"threads" validate:"min=0,max=256"`
}

// OpenAIConfig configures the hosted transcription engine.
type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url" validate:"omitempty,url"`
	Model      string `yaml:"model" validate:"required"`
	TimeoutSec int    `yaml:"timeout_sec" validate:"min=0"`
}

// Timeout returns the request timeout for the hosted engine.
func (c OpenAIConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return DefaultOpenAITimeout
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// GeminiConfig configures the Gemini engine, which receives the audio inline.
type GeminiConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url" validate:"omitempty,url"`
	Model      string `yaml:"model" validate:"required"`
	TimeoutSec int    `yaml:"timeout_sec" validate:"min=0"`
}

// Timeout returns the request timeout for the Gemini engine.
func (c GeminiConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return DefaultGeminiTimeout
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine:   DefaultEngine,
		Language: DefaultLanguage,
		FFmpeg: FFmpegConfig{
			FFmpegPath:  DefaultFFmpegPath,
			FFprobePath: DefaultFFprobePath,
			SampleRate:  DefaultSampleRate,
			Channels:    DefaultChannels,
		},
		WhisperCpp: WhisperCppConfig{
			BinaryPath: DefaultWhisperCppBinary,
			ModelsDir:  defaultModelsDir(),
		},
		OpenAI: OpenAIConfig{
			Model: DefaultOpenAIModel,
		},
		Gemini: GeminiConfig{
			Model: DefaultGeminiModel,
		},
	}
}

func defaultModelsDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "whisper.cpp", "models")
	}
	return "models"
}

// DefaultConfigPath is where Load looks when no path is given.
func DefaultConfigPath() string {
	if p := getEnvOrDefault("TRANSCRIBE_CONFIG", ""); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "transcribe", "config.yaml")
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment. An explicitly named file must exist; the default one may not.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath()
	}
	if configPath != "" {
		if err := loadFile(cfg, os.ExpandEnv(configPath), explicit); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, errors.E(errors.KindConfig, "failed to read environment", err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil
		}
		return errors.E(errors.KindConfig, fmt.Sprintf("failed to read config file %s", path), err)
	}

	// Expand environment variables like ${OPENAI_API_KEY}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return errors.E(errors.KindConfig, fmt.Sprintf("failed to parse config YAML %s", path), err)
	}
	return nil
}
