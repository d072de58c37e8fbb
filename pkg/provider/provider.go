// Package provider turns natural-language prompts into validated application
// descriptions by querying a language model. Each provider keeps its own
// conversation so follow-up prompts refine the previous answer.
package provider

import (
	"context"
	_ "embed"
	"strings"
	"sync"

	"github.com/goliatone/go-crudgen/pkg/ir"
)

//go:embed prompts/system.md
var systemPrompt string

// SystemPrompt returns the instructions describing the application document.
func SystemPrompt() string {
	return systemPrompt
}

// Provider answers prompts with an application description.
type Provider interface {
	Name() string
	Query(ctx context.Context, prompt string) (ir.Application, error)
}

// Seeder is implemented by providers that can resume from a snapshot.
type Seeder interface {
	Seed(snapshot []byte) error
}

// Seed primes p with a previous snapshot when p supports it. It reports
// whether the snapshot was taken.
func Seed(p Provider, snapshot []byte) (bool, error) {
	s, ok := p.(Seeder)
	if !ok {
		return false, nil
	}
	if err := s.Seed(snapshot); err != nil {
		return false, err
	}
	return true, nil
}

// Role of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Conversation is the message history of a provider.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
}

// NewConversation starts a history with the given system instructions.
func NewConversation(system string) *Conversation {
	c := &Conversation{}
	if strings.TrimSpace(system) != "" {
		c.messages = append(c.messages, Message{Role: RoleSystem, Content: system})
	}
	return c
}

// Append adds a message and returns the history length before it.
func (c *Conversation) Append(role Role, content string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.messages)
	c.messages = append(c.messages, Message{Role: role, Content: content})
	return n
}

// Truncate drops every message from index n on.
func (c *Conversation) Truncate(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n >= 0 && n < len(c.messages) {
		c.messages = c.messages[:n]
	}
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Seed records a snapshot as the assistant's previous answer so the next
// prompt is read as a modification of it.
func (c *Conversation) Seed(snapshot []byte) error {
	app, err := ir.LoadSnapshot(snapshot)
	if err != nil {
		return &Error{Op: OpDecode, Err: err}
	}
	doc, err := ir.MarshalDocument(app)
	if err != nil {
		return &Error{Op: OpDecode, Err: err}
	}
	c.Append(RoleAssistant, "```json\n"+string(doc)+"\n```")
	return nil
}

// ExtractDocument returns the content of the first fenced block of text, or
// the whole text when there is none.
func ExtractDocument(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return strings.TrimSpace(text)
	}
	rest := text[start+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(text)
	}
	body := strings.TrimLeft(rest[:end], " \t")
	// The info string runs to the end of the opening line.
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	} else if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		info := strings.TrimSpace(body[:nl])
		if info == "" || !strings.ContainsAny(info, "{[") {
			body = body[nl+1:]
		}
	}
	return strings.TrimSpace(body)
}

// Decode extracts the document from a model answer and parses it.
func Decode(text string) (ir.Application, error) {
	app, err := ir.Parse([]byte(ExtractDocument(text)))
	if err != nil {
		return ir.Application{}, &Error{Op: OpDecode, Raw: text, Err: err}
	}
	return app, nil
}

func decodeAs(name, text string) (ir.Application, error) {
	app, err := Decode(text)
	if perr, ok := AsError(err); ok {
		perr.Provider = name
	}
	return app, err
}
