package executors

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orienthq/orient/pkg/pending"
)

// PromptStore persists named system prompts.
type PromptStore interface {
	SetPrompt(ctx context.Context, name, content string) error
	DeletePrompt(ctx context.Context, name string) error
}

// NewPromptExecutor builds the executor for prompt actions. The action
// target is the prompt name; changes carry "content".
func NewPromptExecutor(store PromptStore, logger zerolog.Logger) pending.Executor {
	log := logger.With().Str("executor", "prompt").Logger()

	return func(ctx context.Context, action pending.Action) pending.Result {
		name := action.Target

		if action.Operation == pending.OperationDelete {
			if err := store.DeletePrompt(ctx, name); err != nil {
				log.Error().Err(err).Str("prompt", name).Msg("Prompt deletion failed")
				return failure("failed to delete prompt %s: %v", displayTarget(action), err)
			}
			return pending.Result{
				Success: true,
				Message: fmt.Sprintf("Deleted prompt %s", displayTarget(action)),
			}
		}

		content, ok := stringChange(action, "content")
		if !ok || content == "" {
			return failure("prompt action for %s is missing content", displayTarget(action))
		}

		if err := store.SetPrompt(ctx, name, content); err != nil {
			log.Error().Err(err).Str("prompt", name).Msg("Prompt update failed")
			return failure("failed to save prompt %s: %v", displayTarget(action), err)
		}

		return pending.Result{
			Success: true,
			Message: fmt.Sprintf("Saved prompt %s (%d characters)", displayTarget(action), len(content)),
		}
	}
}
