package whisper_cpp

import (
	"go.uber.org/zap"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/api/provider"
	"media-transcribe/internal/config"
)

func init() {
	// Register whisper_cpp engine with the factory
	provider.RegisterEngine(EngineName, createLocalEngine)
}

func createLocalEngine(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	return NewLocalEngine(cfg.WhisperCpp, logger.Named(EngineName)), nil
}
