package provider

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/afero"
)

// Defaults of the hosted providers.
const (
	DefaultOpenAIModel   = "gpt-3.5-turbo-1106"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultGoogleModel   = "gemini-pro"
	DefaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTemperature   = 0.4
	DefaultTimeout       = 2 * time.Minute
)

// Config carries what the provider factories need. Zero values fall back to
// the defaults above.
type Config struct {
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	GoogleKey     string
	GoogleModel   string
	GoogleBaseURL string

	Temperature float64

	// File is the description read by the file provider.
	File string
	FS   afero.Fs

	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (c Config) temperature() float64 {
	if c.Temperature > 0 {
		return c.Temperature
	}
	return DefaultTemperature
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
