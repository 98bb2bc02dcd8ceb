package gemini

import (
	"go.uber.org/zap"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/api/provider"
	"media-transcribe/internal/config"
)

func init() {
	// Register gemini engine with the factory
	provider.RegisterEngine(EngineName, createEngine)
}

func createEngine(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	return NewEngine(cfg.Gemini, logger.Named(EngineName)), nil
}
