package whisper

import (
	"go.uber.org/zap"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/api/provider"
	"media-transcribe/internal/config"
)

func init() {
	// Register openai engine with the factory
	provider.RegisterEngine(EngineName, createRemoteEngine)
}

func createRemoteEngine(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	return NewRemoteEngine(cfg.OpenAI, logger.Named(EngineName)), nil
}
