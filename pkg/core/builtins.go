package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/orienthq/orient/pkg/pending"
	"github.com/orienthq/orient/pkg/tools"
)

// registerBuiltins installs the builtin catalog and attaches handlers
// for the config-mutating tools. Those handlers never apply a change
// directly: each one files a proposal and returns the receipt, so the
// agent has to relay the confirmation step back to the human.
func (c *Core) registerBuiltins() error {
	handlers := map[string]tools.Handler{
		"orient_permission_set": c.handlePermissionSet,
		"orient_prompt_set":     c.handlePromptSet,
		"orient_secret_set":     c.handleSecretSet,
		"orient_agent_config":   c.handleAgentConfig,
		"orient_schedule_set":   c.handleScheduleSet,
	}

	for _, desc := range tools.Builtins() {
		if err := c.registry.Register(desc, handlers[desc.Name]); err != nil {
			return fmt.Errorf("register builtin %q: %w", desc.Name, err)
		}
	}
	return nil
}

func (c *Core) handlePermissionSet(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	chatID := argString(args, "chat_id")
	if chatID == "" {
		return nil, fmt.Errorf("chat_id is required")
	}
	perm := argString(args, "permission")
	if perm == "" {
		return nil, fmt.Errorf("permission is required")
	}

	changes := map[string]interface{}{"permission": perm}
	if chatType := argString(args, "chat_type"); chatType != "" {
		changes["chat_type"] = chatType
	}
	if name := argString(args, "name"); name != "" {
		changes["name"] = name
	}

	receipt, err := c.pending.Propose(pending.ActionPermission, pending.OperationUpdate, chatID, changes, pending.ProposeOptions{
		TargetDisplay: argString(args, "name"),
	})
	if err != nil {
		return nil, err
	}
	return receiptPayload(receipt), nil
}

func (c *Core) handlePromptSet(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	name := argString(args, "name")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	content := argString(args, "content")
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}

	receipt, err := c.pending.Propose(pending.ActionPrompt, pending.OperationUpdate, name,
		map[string]interface{}{"content": content}, pending.ProposeOptions{})
	if err != nil {
		return nil, err
	}
	return receiptPayload(receipt), nil
}

func (c *Core) handleSecretSet(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	key := argString(args, "key")
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}
	value := argString(args, "value")
	if value == "" {
		return nil, fmt.Errorf("value is required")
	}

	receipt, err := c.pending.Propose(pending.ActionSecret, pending.OperationUpdate, key,
		map[string]interface{}{"value": value}, pending.ProposeOptions{
			// The receipt goes back through the model; never echo the
			// secret value in the summary.
			Summary: fmt.Sprintf("update secret %q", key),
		})
	if err != nil {
		return nil, err
	}
	return receiptPayload(receipt), nil
}

func (c *Core) handleAgentConfig(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	agentID := argString(args, "agent_id")
	if agentID == "" {
		return nil, fmt.Errorf("agent_id is required")
	}
	config, _ := args["config"].(map[string]interface{})
	if len(config) == 0 {
		return nil, fmt.Errorf("config is required")
	}

	receipt, err := c.pending.Propose(pending.ActionAgent, pending.OperationUpdate, agentID, config, pending.ProposeOptions{})
	if err != nil {
		return nil, err
	}
	return receiptPayload(receipt), nil
}

func (c *Core) handleScheduleSet(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	name := argString(args, "name")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	spec := argString(args, "cron")
	if spec == "" {
		return nil, fmt.Errorf("cron is required")
	}

	// New schedules get a generated id; callers updating an existing
	// schedule pass its id through.
	scheduleID := argString(args, "id")
	operation := pending.OperationUpdate
	if scheduleID == "" {
		scheduleID = uuid.NewString()
		operation = pending.OperationCreate
	}

	changes := map[string]interface{}{"name": name, "cron": spec}
	if message := argString(args, "message"); message != "" {
		changes["message"] = message
	}

	receipt, err := c.pending.Propose(pending.ActionSchedule, operation, scheduleID, changes, pending.ProposeOptions{
		TargetDisplay: name,
	})
	if err != nil {
		return nil, err
	}
	return receiptPayload(receipt), nil
}

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func receiptPayload(receipt pending.Receipt) map[string]interface{} {
	return map[string]interface{}{
		"pending_action_id": receipt.ID,
		"summary":           receipt.Summary,
		"expires_at":        receipt.ExpiresAt,
		"instructions":      receipt.Instructions,
	}
}
