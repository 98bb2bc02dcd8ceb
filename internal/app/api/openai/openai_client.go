package openai

import (
	"net/http"

	"github.com/sashabaranov/go-openai"

	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/config"
)

// NewClient builds an API client from cfg. A missing key is a model-load
// failure since the hosted model is unusable without it.
func NewClient(cfg config.OpenAIConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.E(errors.KindModelLoad, "OPENAI_API_KEY is not set", nil)
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout()}
	return openai.NewClientWithConfig(clientConfig), nil
}
