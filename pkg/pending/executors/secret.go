package executors

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orienthq/orient/pkg/pending"
)

// SecretStore persists API keys and other secrets.
type SecretStore interface {
	SetSecret(ctx context.Context, key, value string) error
	DeleteSecret(ctx context.Context, key string) error
}

// NewSecretExecutor builds the executor for secret actions. The action
// target is the secret key; changes carry "value". Secret values never
// appear in result messages or logs.
func NewSecretExecutor(store SecretStore, logger zerolog.Logger) pending.Executor {
	log := logger.With().Str("executor", "secret").Logger()

	return func(ctx context.Context, action pending.Action) pending.Result {
		key := action.Target

		if action.Operation == pending.OperationDelete {
			if err := store.DeleteSecret(ctx, key); err != nil {
				log.Error().Err(err).Str("key", key).Msg("Secret deletion failed")
				return failure("failed to delete secret %s: %v", displayTarget(action), err)
			}
			return pending.Result{
				Success: true,
				Message: fmt.Sprintf("Deleted secret %s", displayTarget(action)),
			}
		}

		value, ok := stringChange(action, "value")
		if !ok || value == "" {
			return failure("secret action for %s is missing a value", displayTarget(action))
		}

		if err := store.SetSecret(ctx, key, value); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Secret update failed")
			return failure("failed to store secret %s: %v", displayTarget(action), err)
		}

		return pending.Result{
			Success: true,
			Message: fmt.Sprintf("Stored secret %s ([REDACTED])", displayTarget(action)),
			Data:    map[string]interface{}{"key": key},
		}
	}
}
