// Package translate implements the translation pipeline of spec §4.9:
// cache, context-grouped batching, the line-count invariant and its
// per-item fallback, the polish pass, and CJK-aware line wrapping.
package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/revrost/go-openrouter"
)

// ChatModel is the abstract LLM boundary named in spec §6: a single
// complete(prompt) -> string method.
type ChatModel interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// OpenAICompatModel talks to any OpenAI-compatible chat completion
// endpoint (DeepSeek, a local vLLM gateway, etc.) via a configurable base
// URL, the way the teacher's Provider shape anticipates ("client :=
// openai.NewClient(apiKey)" in pkg/llms/openai.go, generalized to a
// custom base URL since LLM_BASE_URL is operator-configured).
type OpenAICompatModel struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

func NewOpenAICompatModel(baseURL, apiKey, model string, temperature float64, maxTokens int64) *OpenAICompatModel {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAICompatModel{client: client, model: model, temperature: temperature, maxTokens: maxTokens}
}

func (m *OpenAICompatModel) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       m.model,
		Messages:    messages,
		Temperature: openai.Float(m.temperature),
		MaxTokens:   openai.Int(m.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("translate: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translate: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenRouterModel routes through OpenRouter instead, reusing the teacher's
// real HTTP wiring pattern in pkg/llms/openrouter.go (non-streaming path
// via revrost/go-openrouter.CreateChatCompletion).
type OpenRouterModel struct {
	client *openrouter.Client
	model  string
}

func NewOpenRouterModel(apiKey, model string) *OpenRouterModel {
	return &OpenRouterModel{client: openrouter.NewClient(apiKey), model: model}
}

func (m *OpenRouterModel) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	var messages []openrouter.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    openrouter.ChatMessageRoleSystem,
			Content: openrouter.Content{Text: systemPrompt},
		})
	}
	messages = append(messages, openrouter.ChatCompletionMessage{
		Role:    openrouter.ChatMessageRoleUser,
		Content: openrouter.Content{Text: prompt},
	})

	resp, err := m.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model:    m.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("translate: openrouter completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translate: no choices returned")
	}
	return resp.Choices[0].Message.Content.Text, nil
}
