package executors

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orienthq/orient/pkg/pending"
)

// AgentStore persists agent configurations.
type AgentStore interface {
	SaveAgent(ctx context.Context, id string, config map[string]interface{}) error
	DeleteAgent(ctx context.Context, id string) error
}

// NewAgentExecutor builds the executor for agent actions. The action
// target is the agent id; the changes payload is the agent
// configuration itself.
func NewAgentExecutor(store AgentStore, logger zerolog.Logger) pending.Executor {
	log := logger.With().Str("executor", "agent").Logger()

	return func(ctx context.Context, action pending.Action) pending.Result {
		agentID := action.Target

		if action.Operation == pending.OperationDelete {
			if err := store.DeleteAgent(ctx, agentID); err != nil {
				log.Error().Err(err).Str("agentId", agentID).Msg("Agent deletion failed")
				return failure("failed to delete agent %s: %v", displayTarget(action), err)
			}
			return pending.Result{
				Success: true,
				Message: fmt.Sprintf("Deleted agent %s", displayTarget(action)),
			}
		}

		if len(action.Changes) == 0 {
			return failure("agent action for %s carries no configuration", displayTarget(action))
		}

		if err := store.SaveAgent(ctx, agentID, action.Changes); err != nil {
			log.Error().Err(err).Str("agentId", agentID).Msg("Agent save failed")
			return failure("failed to save agent %s: %v", displayTarget(action), err)
		}

		return pending.Result{
			Success: true,
			Message: fmt.Sprintf("Saved agent %s", displayTarget(action)),
			Data:    map[string]interface{}{"agent_id": agentID},
		}
	}
}
