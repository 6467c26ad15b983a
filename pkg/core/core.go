// Package core assembles the capability core: tool registry, discovery,
// chat permissions and the pending-action store, constructed explicitly
// at process start and handed to the host's dispatch layer. Nothing in
// here is a global; tests build fresh instances.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/orienthq/orient/internal/metrics"
	"github.com/orienthq/orient/pkg/discovery"
	"github.com/orienthq/orient/pkg/match"
	"github.com/orienthq/orient/pkg/pending"
	"github.com/orienthq/orient/pkg/pending/executors"
	"github.com/orienthq/orient/pkg/permission"
	"github.com/orienthq/orient/pkg/tools"
)

// Discover modes, the single tool surface an agent sees first.
const (
	ModeListCategories = "list_categories"
	ModeBrowse         = "browse"
	ModeSearch         = "search"
)

// Config wires the core's external collaborators.
type Config struct {
	// AdminChatID identifies the admin for permission smart defaults.
	AdminChatID string

	// RecordStore backs the chat permission service. Required.
	RecordStore permission.RecordStore

	// Executor-side stores. Nil fields leave the matching action type
	// without an executor; a correctly wired deployment sets all of
	// them.
	Prompts   executors.PromptStore
	Secrets   executors.SecretStore
	Agents    executors.AgentStore
	Schedules executors.ScheduleStore
	Scheduler executors.ScheduleRegistrar

	// ToolAllow and ToolDeny are wildcard patterns gating tool
	// execution ("orient_*", "*_delete"). Deny wins; an empty allow
	// list allows everything not denied.
	ToolAllow []string
	ToolDeny  []string

	// PermissionCacheTTL, ActionTTL and SweepInterval override the
	// component defaults (60s cache, 5m proposals, 60s sweep).
	PermissionCacheTTL time.Duration
	ActionTTL          time.Duration
	SweepInterval      time.Duration

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// Core owns the four collaborators and exposes the in-process surface
// the host dispatch layer calls.
type Core struct {
	registry    *tools.Registry
	discovery   *discovery.Service
	permissions *permission.Service
	pending     *pending.Store
	toolAllow   match.List
	toolDeny    match.List
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// New builds the core and registers the builtin tool catalog and every
// executor in one startup step.
func New(cfg Config) (*Core, error) {
	registry := tools.NewRegistry()

	permissions, err := permission.NewService(permission.Config{
		Store:       cfg.RecordStore,
		AdminChatID: cfg.AdminChatID,
		CacheTTL:    cfg.PermissionCacheTTL,
		Logger:      cfg.Logger,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("permission service: %w", err)
	}

	store := pending.NewStore(pending.Config{
		TTL:           cfg.ActionTTL,
		SweepInterval: cfg.SweepInterval,
		Logger:        cfg.Logger,
		Metrics:       cfg.Metrics,
	})

	executors.RegisterAll(store, executors.Deps{
		Permissions: permissions,
		Prompts:     cfg.Prompts,
		Secrets:     cfg.Secrets,
		Agents:      cfg.Agents,
		Schedules:   cfg.Schedules,
		Scheduler:   cfg.Scheduler,
		Logger:      cfg.Logger,
	})

	c := &Core{
		registry:    registry,
		discovery:   discovery.NewService(registry),
		permissions: permissions,
		pending:     store,
		toolAllow:   match.CompileList(cfg.ToolAllow),
		toolDeny:    match.CompileList(cfg.ToolDeny),
		logger:      cfg.Logger.With().Str("component", "core").Logger(),
		metrics:     cfg.Metrics,
	}
	if err := c.registerBuiltins(); err != nil {
		return nil, err
	}
	return c, nil
}

// Start launches the pending store's background sweep.
func (c *Core) Start() {
	c.pending.Start()
}

// Stop terminates background work.
func (c *Core) Stop() {
	c.pending.Stop()
}

// Registry exposes the tool registry for host-side registrations
// (platform adapters attach their handlers here at startup).
func (c *Core) Registry() *tools.Registry {
	return c.registry
}

// Permissions exposes the permission service (for cache clears after
// bulk external changes, and for host-side listing).
func (c *Core) Permissions() *permission.Service {
	return c.permissions
}

// DiscoverRequest selects one of the three discovery modes.
type DiscoverRequest struct {
	Mode     string `json:"mode"`
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// DiscoverResult carries whichever view the mode produced.
type DiscoverResult struct {
	Categories []tools.CategoryInfo     `json:"categories,omitempty"`
	Tools      []tools.Descriptor       `json:"tools,omitempty"`
	Results    []discovery.SearchResult `json:"results,omitempty"`
	Total      int                      `json:"total,omitempty"`
}

// Discover is the single discovery entry point.
func (c *Core) Discover(req DiscoverRequest) (DiscoverResult, error) {
	c.metrics.RecordDiscoveryRequest(req.Mode)

	switch req.Mode {
	case ModeListCategories:
		infos := c.discovery.ListCategories()
		return DiscoverResult{Categories: infos, Total: len(infos)}, nil
	case ModeBrowse:
		descs, err := c.discovery.Browse(req.Category)
		if err != nil {
			return DiscoverResult{}, err
		}
		return DiscoverResult{Tools: descs, Total: len(descs)}, nil
	case ModeSearch:
		resp := c.discovery.Search(req.Query, req.Limit)
		return DiscoverResult{Results: resp.Results, Total: resp.Total}, nil
	default:
		return DiscoverResult{}, fmt.Errorf("unknown discover mode %q (valid: %s, %s, %s)",
			req.Mode, ModeListCategories, ModeBrowse, ModeSearch)
	}
}

// Tool execution errors.
var (
	ErrToolNotFound = errors.New("tool not found")
	ErrToolDenied   = errors.New("tool denied by policy")
	ErrNoHandler    = errors.New("tool has no handler")
)

// ExecuteTool runs a registered tool handler after checking the
// allow/deny policy and validating the arguments against the tool's
// input schema.
func (c *Core) ExecuteTool(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error) {
	if _, ok := c.registry.Get(name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if !match.Allowed(name, c.toolAllow, c.toolDeny) {
		c.logger.Warn().Str("tool", name).Msg("Tool call denied by policy")
		return nil, fmt.Errorf("%w: %s", ErrToolDenied, name)
	}
	if err := c.registry.ValidateInput(name, args); err != nil {
		return nil, err
	}

	handler, ok := c.registry.GetHandler(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, name)
	}

	c.logger.Debug().Str("tool", name).Msg("Executing tool")
	return handler(ctx, args)
}

// CheckPermission resolves read/respond access for a chat context.
func (c *Core) CheckPermission(ctx context.Context, chatID string, isGroup bool, senderID string) (permission.CheckResult, error) {
	return c.permissions.Check(ctx, chatID, isGroup, senderID)
}

// CheckWritePermission is the strict, explicit-record-only write gate
// consulted before any outbound send.
func (c *Core) CheckWritePermission(ctx context.Context, chatID string) (permission.WriteResult, error) {
	return c.permissions.CheckWrite(ctx, chatID)
}

// Propose records a configuration change awaiting confirmation.
func (c *Core) Propose(actionType pending.ActionType, operation pending.Operation, target string, changes map[string]interface{}, opts pending.ProposeOptions) (pending.Receipt, error) {
	return c.pending.Propose(actionType, operation, target, changes, opts)
}

// Confirm executes a pending action exactly once.
func (c *Core) Confirm(ctx context.Context, actionID string) (pending.Result, error) {
	return c.pending.Confirm(ctx, actionID)
}

// Cancel discards a pending action without executing it.
func (c *Core) Cancel(actionID string) error {
	return c.pending.Cancel(actionID)
}

// ListPending returns all live pending actions.
func (c *Core) ListPending() []pending.Action {
	return c.pending.List()
}
