// Package executors provides the concrete executors for every pending
// action type. Each executor owns a narrow store interface; none share
// mutable state. RegisterAll wires all of them into a pending store in
// one explicit startup step so no registration depends on import
// order.
package executors

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orienthq/orient/pkg/pending"
)

// Deps carries every executor dependency. Leave a field nil and the
// corresponding action type simply gets no executor.
type Deps struct {
	Permissions PermissionWriter
	Prompts     PromptStore
	Secrets     SecretStore
	Agents      AgentStore
	Schedules   ScheduleStore
	Scheduler   ScheduleRegistrar
	Logger      zerolog.Logger
}

// RegisterAll registers an executor for each action type whose
// dependency is present.
func RegisterAll(store *pending.Store, deps Deps) {
	if deps.Permissions != nil {
		store.RegisterExecutor(pending.ActionPermission, NewPermissionExecutor(deps.Permissions, deps.Logger))
	}
	if deps.Prompts != nil {
		store.RegisterExecutor(pending.ActionPrompt, NewPromptExecutor(deps.Prompts, deps.Logger))
	}
	if deps.Secrets != nil {
		store.RegisterExecutor(pending.ActionSecret, NewSecretExecutor(deps.Secrets, deps.Logger))
	}
	if deps.Agents != nil {
		store.RegisterExecutor(pending.ActionAgent, NewAgentExecutor(deps.Agents, deps.Logger))
	}
	if deps.Schedules != nil {
		store.RegisterExecutor(pending.ActionSchedule, NewScheduleExecutor(deps.Schedules, deps.Scheduler, deps.Logger))
	}
}

func stringChange(action pending.Action, key string) (string, bool) {
	value, ok := action.Changes[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

func failure(format string, args ...interface{}) pending.Result {
	return pending.Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

func displayTarget(action pending.Action) string {
	if action.TargetDisplay != "" {
		return action.TargetDisplay
	}
	return action.Target
}
