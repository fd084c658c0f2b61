package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const typeName = "OpenAICompatible"

var (
	// ErrUnrecognizedResponse is returned when a response body carries
	// neither a usable choice nor an error field.
	ErrUnrecognizedResponse = errors.New("completion response has neither choices nor error")
	ErrStreamingUnsupported = errors.New("streaming completions are not supported")
)

// APIError is a failure reported by, or while talking to, the completion
// endpoint. Message is shown to the end user verbatim.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Config configures a ChatModel. Nil sampling fields are left out of the
// request body.
type Config struct {
	URL         string
	APIKey      string
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int
	Timeout     time.Duration
	// Referer and Title are sent as OpenRouter attribution headers when set.
	Referer    string
	Title      string
	HTTPClient *http.Client
}

// ChatModel is an eino chat model for OpenAI-compatible chat-completions
// endpoints such as OpenRouter.
type ChatModel struct {
	cfg    Config
	client *http.Client
}

var _ einomodel.BaseChatModel = (*ChatModel)(nil)

func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.URL == "" {
		return nil, errors.New("completion url is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("completion api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("completion model is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &ChatModel{cfg: cfg, client: client}, nil
}

func (m *ChatModel) GetType() string { return typeName }

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	TopP        *float32      `json:"top_p,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

// Generate sends one non-streaming completion request. Per-call eino options
// (model, temperature, top_p, max_tokens, stop) override the configured ones.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	options := einomodel.GetCommonOptions(&einomodel.Options{
		Model:       &m.cfg.Model,
		Temperature: m.cfg.Temperature,
		TopP:        m.cfg.TopP,
		MaxTokens:   m.cfg.MaxTokens,
	}, opts...)

	body := chatRequest{
		Messages:    toWireMessages(input),
		Temperature: options.Temperature,
		TopP:        options.TopP,
		MaxTokens:   options.MaxTokens,
		Stop:        options.Stop,
	}
	body.Model = m.cfg.Model
	if options.Model != nil && *options.Model != "" {
		body.Model = *options.Model
	}

	fields, err := m.post(ctx, body)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return interpretResponse(fields)
}

func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, ErrStreamingUnsupported
}

func (m *ChatModel) post(ctx context.Context, body chatRequest) (map[string]json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", m.cfg.Referer)
	}
	if m.cfg.Title != "" {
		req.Header.Set("X-Title", m.cfg.Title)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send completion request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read completion response: %w", err)
	}

	// The status code is not checked: providers report failures in the body
	// and the body shape decides the outcome.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode completion response (status %d): %w", resp.StatusCode, err)
	}
	return fields, nil
}

func toWireMessages(in []*schema.Message) []wireMessage {
	out := make([]wireMessage, 0, len(in))
	for _, msg := range in {
		if msg == nil {
			continue
		}
		out = append(out, wireMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}

type wireChoice struct {
	Message struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// interpretResponse maps a decoded body to an assistant message or an error.
// A non-empty choices list wins over an error field.
func interpretResponse(fields map[string]json.RawMessage) (*schema.Message, error) {
	if raw, ok := fields["choices"]; ok {
		var choices []wireChoice
		if err := json.Unmarshal(raw, &choices); err == nil && len(choices) > 0 {
			msg := schema.AssistantMessage(stringOrEmpty(choices[0].Message.Content), nil)
			msg.ResponseMeta = &schema.ResponseMeta{FinishReason: choices[0].FinishReason}
			if usageRaw, ok := fields["usage"]; ok {
				var usage wireUsage
				if json.Unmarshal(usageRaw, &usage) == nil {
					msg.ResponseMeta.Usage = &schema.TokenUsage{
						PromptTokens:     usage.PromptTokens,
						CompletionTokens: usage.CompletionTokens,
						TotalTokens:      usage.TotalTokens,
					}
				}
			}
			return msg, nil
		}
	}
	if raw, ok := fields["error"]; ok {
		return nil, &APIError{Message: errorMessage(raw)}
	}
	return nil, ErrUnrecognizedResponse
}

// errorMessage uses a string error verbatim and the message of an error object.
func errorMessage(raw json.RawMessage) string {
	const unknown = "Unknown error"
	if isJSONNull(raw) {
		return unknown
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil {
		if msgRaw, ok := obj["message"]; ok && !isJSONNull(msgRaw) {
			var msg string
			if json.Unmarshal(msgRaw, &msg) == nil {
				return msg
			}
		}
	}
	return unknown
}

func stringOrEmpty(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func isJSONNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
