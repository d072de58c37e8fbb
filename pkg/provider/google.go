package provider

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/ir"
)

// Google queries the Gemini generateContent API. Gemini has no system role,
// so the instructions open the history as a user turn acknowledged by the
// model.
type Google struct {
	*Conversation
	key         string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
	logger      *slog.Logger
}

// NewGoogle builds a Gemini provider. The API key is required.
func NewGoogle(cfg Config) (*Google, error) {
	if strings.TrimSpace(cfg.GoogleKey) == "" {
		return nil, &Error{Provider: "google", Op: OpConfig, Err: errors.New("GOOGLE_API_KEY is not set")}
	}
	conv := NewConversation("")
	conv.Append(RoleUser, SystemPrompt())
	conv.Append(RoleAssistant, "OK")
	return &Google{
		Conversation: conv,
		key:          cfg.GoogleKey,
		model:        orDefault(cfg.GoogleModel, DefaultGoogleModel),
		baseURL:      strings.TrimRight(orDefault(cfg.GoogleBaseURL, DefaultGoogleBaseURL), "/"),
		temperature:  cfg.temperature(),
		client:       cfg.httpClient(),
		logger:       cfg.logger(),
	}, nil
}

// Name reports the provider and model.
func (p *Google) Name() string {
	return "Google (" + p.model + ")"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Query sends prompt with the conversation so far.
func (p *Google) Query(ctx context.Context, prompt string) (ir.Application, error) {
	mark := p.Append(RoleUser, prompt)

	var req geminiRequest
	req.GenerationConfig.Temperature = p.temperature
	for _, m := range p.Messages() {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}

	endpoint := p.baseURL + "/models/" + url.PathEscape(p.model) + ":generateContent"
	header := http.Header{}
	header.Set("x-goog-api-key", p.key)

	var resp geminiResponse
	if err := postJSON(ctx, p.client, "google", endpoint, header, req, &resp); err != nil {
		p.Truncate(mark)
		return ir.Application{}, err
	}

	var text strings.Builder
	if len(resp.Candidates) > 0 {
		for _, part := range resp.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		p.Truncate(mark)
		return ir.Application{}, &Error{Provider: "google", Op: OpRequest, Err: errors.New("response has no candidates")}
	}

	content := text.String()
	p.Append(RoleAssistant, content)
	p.logger.Debug("provider answered", "provider", p.Name(), "content", content)
	return decodeAs("google", content)
}

// Seed records a snapshot as the model's previous answer. Gemini expects
// alternating turns, so a user turn introduces it.
func (p *Google) Seed(snapshot []byte) error {
	app, err := ir.LoadSnapshot(snapshot)
	if err != nil {
		return &Error{Provider: "google", Op: OpDecode, Err: err}
	}
	doc, err := ir.MarshalDocument(app)
	if err != nil {
		return &Error{Provider: "google", Op: OpDecode, Err: err}
	}
	p.Append(RoleUser, "This is the current application description.")
	p.Append(RoleAssistant, "```json\n"+string(doc)+"\n```")
	return nil
}
