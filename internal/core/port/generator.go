package port

import (
	"context"
	"takabot/internal/core/domain"
)

type TextGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompts []domain.Prompt) (domain.ModelResponse, error)
}
