package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// defaultEnvPaths are tried in order; the first one found is loaded.
var defaultEnvPaths = []string{
	".env",
	".env.local",
}

// LoadEnv loads environment variables from the first existing .env file.
// Variables already present in the process environment are never overridden.
// It returns the path that was loaded, or "" when none exist.
func LoadEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = defaultEnvPaths
	}
	for _, envPath := range paths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return "", fmt.Errorf("error loading %s file: %w", envPath, err)
		}
		return envPath, nil
	}
	return "", nil
}

// applyEnv overlays TRANSCRIBE_* and tool-specific variables on cfg.
func applyEnv(cfg *Config) error {
	setString(&cfg.Engine, "TRANSCRIBE_ENGINE")
	setString(&cfg.Language, "TRANSCRIBE_LANGUAGE")
	setString(&cfg.TempDir, "TRANSCRIBE_TEMP_DIR")

	setString(&cfg.FFmpeg.FFmpegPath, "FFMPEG_PATH")
	setString(&cfg.FFmpeg.FFprobePath, "FFPROBE_PATH")
	if err := setInt(&cfg.FFmpeg.SampleRate, "TRANSCRIBE_SAMPLE_RATE"); err != nil {
		return err
	}
	if err := setInt(&cfg.FFmpeg.Channels, "TRANSCRIBE_CHANNELS"); err != nil {
		return err
	}

	setString(&cfg.WhisperCpp.BinaryPath, "WHISPER_CPP_BINARY")
	setString(&cfg.WhisperCpp.ModelsDir, "WHISPER_CPP_MODELS_DIR")
	if err := setInt(&cfg.WhisperCpp.Threads, "WHISPER_CPP_THREADS"); err != nil {
		return err
	}

	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.OpenAI.Model, "OPENAI_TRANSCRIBE_MODEL")

	setString(&cfg.Gemini.APIKey, "GOOGLE_API_KEY")
	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.BaseURL, "GEMINI_BASE_URL")
	setString(&cfg.Gemini.Model, "GEMINI_MODEL")
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
