//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/audio"
	"media-transcribe/internal/app/converter"
	"media-transcribe/internal/app/model"
	"media-transcribe/internal/app/report"
	"media-transcribe/internal/config"
)

// InitializeConverter wires the pipeline for one run. The engine named by
// cfg.Engine must have been registered by importing its package.
func InitializeConverter(
	cfg *config.Config,
	recognition model.RecognitionConfig,
	progressConfig converter.ProgressConfig,
	metrics *report.Metrics,
	logger *zap.Logger,
) (*converter.Converter, error) {
	wire.Build(
		provideNormalizer,
		provideEngine,
		api.NewAdapter,
		converter.NewProgressManager,
		converter.NewConverter,
		wire.Bind(new(converter.AudioNormalizer), new(*audio.Normalizer)),
		wire.Bind(new(converter.Recognizer), new(*api.Adapter)),
	)
	return &converter.Converter{}, nil
}
