// Package permission resolves read/write authorization for chat
// contexts. Reads fall back to a smart default computed from the chat
// shape; writes are strict deny-by-default and require an explicit
// record. The service never autonomously grants write access.
package permission

import (
	"context"
	"time"
)

// Permission is the access level recorded for a chat.
type Permission string

const (
	PermissionIgnored   Permission = "ignored"
	PermissionReadOnly  Permission = "read_only"
	PermissionReadWrite Permission = "read_write"
)

// Chat types stored on permission records.
const (
	ChatTypeIndividual = "individual"
	ChatTypeGroup      = "group"
)

// Sources reported by Check.
const (
	SourceExplicit     = "explicit"
	SourceSmartDefault = "smart_default"
)

// Record is a persisted chat permission entry. Absence of a record
// means "no explicit permission" and never implies write access.
type Record struct {
	ChatID     string     `json:"chat_id"`
	ChatType   string     `json:"chat_type"`
	Permission Permission `json:"permission"`
	Name       string     `json:"name,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// GroupInfo describes a group chat as known to the messaging platform.
type GroupInfo struct {
	Name             string `json:"name"`
	ParticipantCount int    `json:"participant_count"`
}

// RecordStore is the persisted-record backend, supplied by the host.
// GetRecord and GetGroupInfo return nil (not an error) when no entry
// exists.
type RecordStore interface {
	GetRecord(ctx context.Context, chatID string) (*Record, error)
	SetRecord(ctx context.Context, record Record) error
	DeleteRecord(ctx context.Context, chatID string) error
	ListRecords(ctx context.Context) ([]Record, error)
	GetGroupInfo(ctx context.Context, chatID string) (*GroupInfo, error)
}

// CheckResult is the outcome of a read/respond check.
type CheckResult struct {
	Permission    Permission `json:"permission"`
	ShouldStore   bool       `json:"should_store"`
	ShouldRespond bool       `json:"should_respond"`
	Source        string     `json:"source"`
}

// WriteResult is the outcome of a strict write check. Denial is a
// normal value, not an error.
type WriteResult struct {
	Allowed    bool       `json:"allowed"`
	Permission Permission `json:"permission,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}
