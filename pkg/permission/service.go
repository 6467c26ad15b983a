package permission

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/orienthq/orient/internal/expiry"
	"github.com/orienthq/orient/internal/metrics"
)

// DefaultCacheTTL bounds how stale a cached record may be.
const DefaultCacheTTL = 60 * time.Second

// cached wraps a lookup result so that "record absent" is cacheable
// alongside real records.
type cached struct {
	record *Record
}

// Service answers permission checks for chat contexts.
type Service struct {
	store       RecordStore
	adminChatID string
	cacheTTL    time.Duration
	cache       *expiry.Map[string, cached]
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// Config holds permission service configuration.
type Config struct {
	// Store is the persisted-record backend. Required.
	Store RecordStore

	// AdminChatID identifies the admin's own 1:1 chat and sender id.
	AdminChatID string

	// CacheTTL overrides the 60s record cache TTL.
	CacheTTL time.Duration

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// NewService creates a permission service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	return &Service{
		store:       cfg.Store,
		adminChatID: cfg.AdminChatID,
		cacheTTL:    cfg.CacheTTL,
		cache:       expiry.NewMap[string, cached](),
		logger:      cfg.Logger.With().Str("component", "permission").Logger(),
		metrics:     cfg.Metrics,
	}, nil
}

// lookup returns the explicit record for a chat, consulting the cache
// first. A nil record with nil error means no explicit record exists.
func (s *Service) lookup(ctx context.Context, chatID string) (*Record, error) {
	if entry, ok := s.cache.Get(chatID); ok {
		return entry.record, nil
	}

	record, err := s.store.GetRecord(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("permission record lookup for %q: %w", chatID, err)
	}
	s.cache.Set(chatID, cached{record: record}, s.cacheTTL)
	return record, nil
}

// Check resolves whether the agent may read and respond in a chat.
// Without an explicit record a smart default is computed from the chat
// shape; smart-default write access only ever responds to the admin.
func (s *Service) Check(ctx context.Context, chatID string, isGroup bool, senderID string) (CheckResult, error) {
	record, err := s.lookup(ctx, chatID)
	if err != nil {
		return CheckResult{}, err
	}

	var result CheckResult
	if record != nil {
		result.Permission = record.Permission
		result.Source = SourceExplicit
	} else {
		result.Permission = s.smartDefault(ctx, chatID, isGroup)
		result.Source = SourceSmartDefault
	}

	result.ShouldStore = result.Permission != PermissionIgnored
	result.ShouldRespond = result.Permission == PermissionReadWrite &&
		(result.Source == SourceExplicit || senderID == s.adminChatID)

	s.metrics.RecordPermissionCheck(result.Source, string(result.Permission))
	s.logger.Debug().
		Str("chatId", chatID).
		Str("permission", string(result.Permission)).
		Str("source", result.Source).
		Bool("shouldRespond", result.ShouldRespond).
		Msg("Permission check")

	return result, nil
}

// smartDefault computes the implicit permission for a chat without an
// explicit record. It can grant read_write only for the admin's own
// 1:1 chat or a group the admin occupies alone.
func (s *Service) smartDefault(ctx context.Context, chatID string, isGroup bool) Permission {
	if !isGroup {
		if chatID == s.adminChatID {
			return PermissionReadWrite
		}
		// Never auto-write into someone else's private chat.
		return PermissionReadOnly
	}

	info, err := s.store.GetGroupInfo(ctx, chatID)
	if err != nil {
		s.logger.Warn().Err(err).Str("chatId", chatID).Msg("Group info lookup failed")
		return PermissionReadOnly
	}
	if info != nil && info.ParticipantCount == 1 {
		return PermissionReadWrite
	}
	return PermissionReadOnly
}

// CheckWrite is the strict write check: it consults only the explicit
// record and ignores smart defaults entirely. Write access exists iff
// an explicit read_write record does.
func (s *Service) CheckWrite(ctx context.Context, chatID string) (WriteResult, error) {
	record, err := s.lookup(ctx, chatID)
	if err != nil {
		return WriteResult{Allowed: false, Reason: "permission lookup failed"}, err
	}

	if record == nil {
		s.metrics.RecordWriteDenial()
		return WriteResult{
			Allowed: false,
			Reason:  fmt.Sprintf("no explicit permission record for chat %s; writes are deny-by-default", chatID),
		}, nil
	}
	if record.Permission != PermissionReadWrite {
		s.metrics.RecordWriteDenial()
		return WriteResult{
			Allowed:    false,
			Permission: record.Permission,
			Reason:     fmt.Sprintf("chat %s has explicit permission %s; read_write is required", chatID, record.Permission),
		}, nil
	}

	return WriteResult{Allowed: true, Permission: PermissionReadWrite}, nil
}

// SetPermission writes an explicit record through to the store and
// evicts the chat's cache entry immediately.
func (s *Service) SetPermission(ctx context.Context, chatID, chatType string, perm Permission, name, notes string) error {
	now := time.Now()
	record := Record{
		ChatID:     chatID,
		ChatType:   chatType,
		Permission: perm,
		Name:       name,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.SetRecord(ctx, record); err != nil {
		return fmt.Errorf("set permission for %q: %w", chatID, err)
	}
	s.cache.Delete(chatID)

	s.logger.Info().
		Str("chatId", chatID).
		Str("permission", string(perm)).
		Msg("Permission updated")
	return nil
}

// RemovePermission deletes a chat's explicit record, reverting it to
// smart defaults, and evicts the cache entry.
func (s *Service) RemovePermission(ctx context.Context, chatID string) error {
	if err := s.store.DeleteRecord(ctx, chatID); err != nil {
		return fmt.Errorf("remove permission for %q: %w", chatID, err)
	}
	s.cache.Delete(chatID)

	s.logger.Info().Str("chatId", chatID).Msg("Permission record removed")
	return nil
}

// ListPermissions returns every explicit record from the store.
func (s *Service) ListPermissions(ctx context.Context) ([]Record, error) {
	return s.store.ListRecords(ctx)
}

// ClearCache drops every cached record. Intended for bulk external
// changes such as a migration from a legacy allow-list.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.logger.Debug().Msg("Permission cache cleared")
}
