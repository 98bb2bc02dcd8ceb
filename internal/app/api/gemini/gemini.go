package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/app/model"
	"media-transcribe/internal/config"
)

// EngineName is the registry key for the Gemini engine.
const EngineName = config.EngineGemini

// MaxInlineBytes is the largest request Gemini accepts with inline audio.
const MaxInlineBytes = 20 << 20

const wavMIMEType = "audio/wav"

const transcribePrompt = "Transcribe the speech in this audio verbatim. " +
	"Reply with the transcript text only, without timestamps, speaker labels or commentary."

// Engine sends the normalized WAV inline to a Gemini model and returns its
// reply as a single segment.
type Engine struct {
	cfg    config.GeminiConfig
	logger *zap.Logger
	client *genai.Client
}

func NewEngine(cfg config.GeminiConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultGeminiModel
	}
	return &Engine{cfg: cfg, logger: logger}
}

func (e *Engine) Name() string { return EngineName }

// Load creates the API client. Gemini picks no model by size, so the
// requested size is only logged.
func (e *Engine) Load(ctx context.Context, cfg model.RecognitionConfig) error {
	if e.cfg.APIKey == "" {
		return errors.E(errors.KindModelLoad, "GEMINI_API_KEY is not set", nil)
	}
	clientConfig := &genai.ClientConfig{
		APIKey:     e.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: e.cfg.Timeout()},
	}
	if e.cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: e.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return errors.E(errors.KindModelLoad, "failed to create Gemini client", err)
	}
	e.client = client
	e.logger.Debug("gemini client ready",
		zap.String("model", e.cfg.Model),
		zap.String("requested_size", string(cfg.ModelSize)))
	return nil
}

// Transcribe uploads audioPath inline and exposes the reply as one segment.
func (e *Engine) Transcribe(ctx context.Context, audioPath string, opts api.Options) (api.SegmentIterator, error) {
	if e.client == nil {
		return nil, errors.E(errors.KindModelLoad, "gemini engine used before Load", nil)
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, errors.E(errors.KindTranscription, "failed to read normalized audio", err)
	}
	if info.Size() > MaxInlineBytes {
		return nil, errors.Ef(errors.KindTranscription, nil,
			"audio is %d bytes, over the %d byte inline limit of the gemini engine", info.Size(), MaxInlineBytes)
	}
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, errors.E(errors.KindTranscription, "failed to read normalized audio", err)
	}

	if opts.OnProgress != nil {
		opts.OnProgress(0)
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt(opts.Language)),
			genai.NewPartFromBytes(data, wavMIMEType),
		}, genai.RoleUser),
	}
	resp, err := e.client.Models.GenerateContent(ctx, e.cfg.Model, contents, nil)
	if err != nil {
		return nil, errors.E(errors.KindTranscription, "generateContent failed", err)
	}
	if opts.OnProgress != nil {
		opts.OnProgress(100)
	}

	text := resp.Text()
	e.logger.Debug("gemini transcription finished",
		zap.Int("audio_bytes", len(data)),
		zap.Int("chars", len(text)))
	if text == "" {
		return api.NewSliceIterator(nil), nil
	}
	return api.NewSliceIterator([]model.Segment{{Text: text}}), nil
}

func prompt(language string) string {
	if language == "" || language == config.DefaultLanguage {
		return transcribePrompt
	}
	return fmt.Sprintf("%s The spoken language is %q.", transcribePrompt, language)
}
