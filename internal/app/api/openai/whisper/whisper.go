package whisper

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"media-transcribe/internal/app/api"
	openaiclient "media-transcribe/internal/app/api/openai"
	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/model"
	"media-transcribe/internal/config"
)

// EngineName is the registry key for the hosted engine.
const EngineName = config.EngineOpenAI

// RemoteEngine implements remote transcription using the OpenAI API.
type RemoteEngine struct {
	cfg    config.OpenAIConfig
	logger *zap.Logger
	client *openai.Client
}

// NewRemoteEngine creates a RemoteEngine instance. The client is built by Load.
func NewRemoteEngine(cfg config.OpenAIConfig, logger *zap.Logger) *RemoteEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultOpenAIModel
	}
	return &RemoteEngine{cfg: cfg, logger: logger}
}

func (re *RemoteEngine) Name() string { return EngineName }

// Load creates the API client. The hosted API has a single model, so the
// requested size is only logged.
func (re *RemoteEngine) Load(_ context.Context, cfg model.RecognitionConfig) error {
	client, err := openaiclient.NewClient(re.cfg)
	if err != nil {
		return err
	}
	re.client = client
	re.logger.Debug("openai transcription client ready",
		zap.String("model", re.cfg.Model),
		zap.String("requested_size", string(cfg.ModelSize)))
	return nil
}

// Transcribe uploads the audio and exposes the returned segments.
func (re *RemoteEngine) Transcribe(ctx context.Context, audioPath string, opts api.Options) (api.SegmentIterator, error) {
	if re.client == nil {
		return nil, errors.E(errors.KindModelLoad, "openai engine used before Load", nil)
	}

	req := openai.AudioRequest{
		Model:    re.cfg.Model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if opts.Language != "" && opts.Language != config.DefaultLanguage {
		req.Language = opts.Language
	}

	if opts.OnProgress != nil {
		opts.OnProgress(0)
	}
	resp, err := re.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, errors.E(errors.KindTranscription, "createTranscription failed", err)
	}
	if opts.OnProgress != nil {
		opts.OnProgress(100)
	}

	segments := toSegments(resp)
	re.logger.Debug("openai transcription finished",
		zap.String("language", resp.Language),
		zap.Float64("duration_sec", resp.Duration),
		zap.Int("segments", len(segments)))
	return api.NewSliceIterator(segments), nil
}

// toSegments keeps the API's segment order. A response without segments
// becomes one segment holding the whole text.
func toSegments(resp openai.AudioResponse) []model.Segment {
	if len(resp.Segments) == 0 {
		if resp.Text == "" {
			return nil
		}
		return []model.Segment{{
			Index: 0,
			End:   seconds(resp.Duration),
			Text:  resp.Text,
		}}
	}
	segments := make([]model.Segment, 0, len(resp.Segments))
	for i, s := range resp.Segments {
		segments = append(segments, model.Segment{
			Index: i,
			Start: seconds(s.Start),
			End:   seconds(s.End),
			Text:  s.Text,
		})
	}
	return segments
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
