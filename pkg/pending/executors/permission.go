package executors

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orienthq/orient/pkg/pending"
	"github.com/orienthq/orient/pkg/permission"
)

// PermissionWriter is the slice of the permission service an executor
// needs: write-through updates with cache eviction.
type PermissionWriter interface {
	SetPermission(ctx context.Context, chatID, chatType string, perm permission.Permission, name, notes string) error
	RemovePermission(ctx context.Context, chatID string) error
}

// NewPermissionExecutor builds the executor for permission actions.
// The action target is the chat id; changes carry "permission" and
// optionally "chat_type", "name" and "notes".
func NewPermissionExecutor(writer PermissionWriter, logger zerolog.Logger) pending.Executor {
	log := logger.With().Str("executor", "permission").Logger()

	return func(ctx context.Context, action pending.Action) pending.Result {
		chatID := action.Target

		if action.Operation == pending.OperationDelete {
			if err := writer.RemovePermission(ctx, chatID); err != nil {
				log.Error().Err(err).Str("chatId", chatID).Msg("Permission removal failed")
				return failure("failed to remove permission for %s: %v", displayTarget(action), err)
			}
			return pending.Result{
				Success: true,
				Message: fmt.Sprintf("Removed explicit permission for %s; smart defaults apply again", displayTarget(action)),
			}
		}

		permValue, ok := stringChange(action, "permission")
		if !ok {
			return failure("permission action for %s is missing the permission value", displayTarget(action))
		}
		perm := permission.Permission(permValue)
		switch perm {
		case permission.PermissionIgnored, permission.PermissionReadOnly, permission.PermissionReadWrite:
		default:
			return failure("unknown permission value %q", permValue)
		}

		chatType, _ := stringChange(action, "chat_type")
		if chatType == "" {
			chatType = permission.ChatTypeIndividual
		}
		name, _ := stringChange(action, "name")
		notes, _ := stringChange(action, "notes")

		if err := writer.SetPermission(ctx, chatID, chatType, perm, name, notes); err != nil {
			log.Error().Err(err).Str("chatId", chatID).Msg("Permission update failed")
			return failure("failed to set permission for %s: %v", displayTarget(action), err)
		}

		return pending.Result{
			Success: true,
			Message: fmt.Sprintf("Set permission for %s to %s", displayTarget(action), perm),
			Data:    map[string]interface{}{"chat_id": chatID, "permission": string(perm)},
		}
	}
}
