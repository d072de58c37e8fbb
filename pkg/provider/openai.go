package provider

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/ir"
)

// OpenAI queries the chat completions API in JSON mode.
type OpenAI struct {
	*Conversation
	key         string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
	logger      *slog.Logger
}

// NewOpenAI builds an OpenAI provider. The API key is required.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if strings.TrimSpace(cfg.OpenAIKey) == "" {
		return nil, &Error{Provider: "openai", Op: OpConfig, Err: errors.New("OPENAI_API_KEY is not set")}
	}
	return &OpenAI{
		Conversation: NewConversation(SystemPrompt()),
		key:          cfg.OpenAIKey,
		model:        orDefault(cfg.OpenAIModel, DefaultOpenAIModel),
		baseURL:      strings.TrimRight(orDefault(cfg.OpenAIBaseURL, DefaultOpenAIBaseURL), "/"),
		temperature:  cfg.temperature(),
		client:       cfg.httpClient(),
		logger:       cfg.logger(),
	}, nil
}

// Name reports the provider and model.
func (p *OpenAI) Name() string {
	return "ChatGPT (" + p.model + ")"
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// Query sends prompt with the conversation so far. A failed request leaves the
// conversation unchanged; an answer that does not validate is kept so the
// next prompt can ask for a fix.
func (p *OpenAI) Query(ctx context.Context, prompt string) (ir.Application, error) {
	mark := p.Append(RoleUser, prompt)

	req := openAIRequest{
		Model:          p.model,
		Temperature:    p.temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	for _, m := range p.Messages() {
		req.Messages = append(req.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.key)

	var resp openAIResponse
	if err := postJSON(ctx, p.client, "openai", p.baseURL+"/chat/completions", header, req, &resp); err != nil {
		p.Truncate(mark)
		return ir.Application{}, err
	}
	if len(resp.Choices) == 0 {
		p.Truncate(mark)
		return ir.Application{}, &Error{Provider: "openai", Op: OpRequest, Err: errors.New("response has no choices")}
	}

	content := resp.Choices[0].Message.Content
	p.Append(RoleAssistant, content)
	p.logger.Debug("provider answered", "provider", p.Name(), "content", content)
	return decodeAs("openai", content)
}
