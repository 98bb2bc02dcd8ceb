package app

import (
	"go.uber.org/zap"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/api/provider"
	"media-transcribe/internal/app/audio"
	"media-transcribe/internal/config"
)

// provideNormalizer builds the ffmpeg-backed normalizer from cfg.
func provideNormalizer(cfg *config.Config, logger *zap.Logger) *audio.Normalizer {
	return audio.NewNormalizer(cfg.FFmpeg, cfg.TempDir, logger.Named("audio"))
}

// provideEngine looks up the engine selected by cfg.Engine in the registry.
func provideEngine(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	return provider.NewEngine(cfg, logger)
}
