package config

import (
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"media-transcribe/internal/app/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field constraints and the settings the chosen engine needs.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return errors.E(errors.KindConfig, "invalid configuration: "+strings.Join(msgs, "; "), nil)
		}
		return errors.E(errors.KindConfig, "invalid configuration", err)
	}

	switch c.Engine {
	case EngineOpenAI:
		if err := ValidateAPIKey(c.OpenAI.APIKey, c.OpenAI.BaseURL); err != nil {
			return err
		}
	case EngineGemini:
		if c.Gemini.APIKey == "" {
			return errors.RequiredField("GEMINI_API_KEY")
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s must be %s %s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %v", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// ValidateAPIKey validates the OpenAI key. Custom base URLs point at
// compatible servers whose keys follow no fixed format.
func ValidateAPIKey(apiKey, baseURL string) error {
	if apiKey == "" {
		return errors.RequiredField("OPENAI_API_KEY")
	}
	if baseURL != "" {
		return nil
	}
	if !strings.HasPrefix(apiKey, "sk-") {
		return errors.InvalidField("OPENAI_API_KEY", "must start with 'sk-'")
	}
	if len(apiKey) < 20 {
		return errors.InvalidField("OPENAI_API_KEY", "too short")
	}
	return nil
}
