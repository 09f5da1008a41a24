package generator

import (
	"context"
	"errors"
	"fmt"
	"takabot/internal/core/domain"

	"github.com/revrost/go-openrouter"
	"github.com/rs/zerolog/log"
)

var ErrEmptyCompletion = errors.New("model returned no choices")

type OpenRouterClient interface {
	CreateChatCompletion(ctx context.Context,
		request openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

type OpenRouter struct {
	client       OpenRouterClient
	model        string
	systemPrompt string
}

func NewOpenRouter(apiKey, model, systemPrompt string) *OpenRouter {
	return &OpenRouter{
		model:        model,
		systemPrompt: systemPrompt,
		client: openrouter.NewClient(
			apiKey,
			openrouter.WithXTitle("takabot"),
		),
	}
}

func (c *OpenRouter) GenerateFromPrompt(ctx context.Context, prompts []domain.Prompt) (domain.ModelResponse, error) {
	messages := make([]openrouter.ChatCompletionMessage, 0, len(prompts)+1)

	if c.systemPrompt != "" {
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    openrouter.ChatMessageRoleSystem,
			Content: openrouter.Content{Text: c.systemPrompt},
		})
	}

	for _, prompt := range prompts {
		role := openrouter.ChatMessageRoleUser
		if prompt.Author == domain.System {
			role = openrouter.ChatMessageRoleAssistant
		}

		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    role,
			Content: openrouter.Content{Text: prompt.Prompt},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Messages: messages,
		Model:    c.model,
	})
	if err != nil {
		return domain.ModelResponse{}, fmt.Errorf("openrouter API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return domain.ModelResponse{}, ErrEmptyCompletion
	}

	metadata := domain.ResponseMetadata{Model: resp.Model}
	if resp.Usage != nil {
		metadata.CompletionTokens = resp.Usage.CompletionTokens
		metadata.TotalTokens = resp.Usage.TotalTokens
	}

	log.Debug().
		Str("model", metadata.Model).
		Int("completionTokens", metadata.CompletionTokens).
		Int("totalTokens", metadata.TotalTokens).
		Msg("got completion")

	return domain.ModelResponse{
		Response: resp.Choices[0].Message.Content.Text,
		Metadata: metadata,
	}, nil
}
