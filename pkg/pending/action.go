// Package pending implements the two-phase propose/confirm workflow
// that gates every state-mutating configuration change behind a
// time-boxed human confirmation. Actions live in memory only; each
// reaches exactly one terminal state: confirmed, cancelled or expired.
package pending

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ActionType identifies which executor handles a confirmed action.
type ActionType string

const (
	ActionPermission ActionType = "permission"
	ActionPrompt     ActionType = "prompt"
	ActionSecret     ActionType = "secret"
	ActionAgent      ActionType = "agent"
	ActionSchedule   ActionType = "schedule"
)

// Operation describes what a confirmed action does to its target.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Sentinel errors for the confirm/cancel paths.
var (
	// ErrNotFoundOrExpired covers a confirm or cancel on an id that is
	// absent or already past its deadline. The proposal's context is
	// gone; the caller should start over.
	ErrNotFoundOrExpired = errors.New("pending action not found or expired")

	// ErrNoExecutor marks a configuration defect: an action type with
	// no registered executor. It must never occur in a correctly
	// wired deployment.
	ErrNoExecutor = errors.New("no executor registered for action type")
)

// Action is a proposed, not-yet-applied configuration change.
type Action struct {
	ID             string                 `json:"id"`
	Type           ActionType             `json:"type"`
	Operation      Operation              `json:"operation"`
	Target         string                 `json:"target"`
	TargetDisplay  string                 `json:"target_display,omitempty"`
	Changes        map[string]interface{} `json:"changes,omitempty"`
	PreviousValues map[string]interface{} `json:"previous_values,omitempty"`
	Summary        string                 `json:"summary"`
	CreatedAt      time.Time              `json:"created_at"`
	ExpiresAt      time.Time              `json:"expires_at"`
}

// Result is what an executor reports back after applying an action.
type Result struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Executor applies the side effect of a confirmed action. Executors
// hold no shared mutable state beyond their own dependencies.
type Executor func(ctx context.Context, action Action) Result

// Receipt is returned from Propose and shown to the human who has to
// confirm or cancel the action.
type Receipt struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	ExpiresAt    time.Time `json:"expires_at"`
	Instructions string    `json:"instructions"`
}

// ProposeOptions carries the optional fields of a proposal.
type ProposeOptions struct {
	TargetDisplay  string
	PreviousValues map[string]interface{}
	Summary        string
	TTL            time.Duration
}

func defaultSummary(actionType ActionType, operation Operation, target string) string {
	return fmt.Sprintf("%s %s %q", operation, actionType, target)
}

func instructions(expiresAt time.Time, now time.Time) string {
	remaining := expiresAt.Sub(now).Round(time.Second)
	return strings.TrimSpace(fmt.Sprintf(
		"Confirm or cancel this action within %s. It expires automatically after that.", remaining))
}
