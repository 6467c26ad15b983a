package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orienthq/orient/pkg/core"
	"github.com/orienthq/orient/pkg/pending"
)

// registerCoreMethods wires the capability core's surface into the RPC
// router.
func (s *Server) registerCoreMethods() {
	startedAt := time.Now()

	must := func(name string, handler RequestHandler) {
		if err := s.router.RegisterMethod(name, handler); err != nil {
			panic(fmt.Sprintf("register method %s: %v", name, err))
		}
	}

	must("system.status", func(_ context.Context, _ map[string]interface{}) (interface{}, error) {
		stats := s.core.Registry().Stats()
		return map[string]interface{}{
			"status":         "ok",
			"uptime_seconds": int(time.Since(startedAt).Seconds()),
			"tools":          stats.Total,
			"pending":        len(s.core.ListPending()),
			"clients":        len(s.clients.All()),
		}, nil
	})

	must("tools.discover", s.handleDiscover)
	must("permission.check", s.handlePermissionCheck)
	must("permission.checkWrite", s.handlePermissionCheckWrite)
	must("permission.list", s.handlePermissionList)
	must("pending.propose", s.handlePendingPropose)
	must("pending.list", s.handlePendingList)
	must("pending.confirm", s.handlePendingConfirm)
	must("pending.cancel", s.handlePendingCancel)
}

func (s *Server) handleDiscover(_ context.Context, params map[string]interface{}) (interface{}, error) {
	req := core.DiscoverRequest{
		Mode:     paramString(params, "mode"),
		Category: paramString(params, "category"),
		Query:    paramString(params, "query"),
		Limit:    paramInt(params, "limit"),
	}
	if req.Mode == "" {
		return nil, &RPCError{Code: InvalidParams, Message: "mode is required"}
	}

	result, err := s.core.Discover(req)
	if err != nil {
		return nil, &RPCError{Code: InvalidParams, Message: err.Error()}
	}
	return result, nil
}

func (s *Server) handlePermissionCheck(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	chatID := paramString(params, "chat_id")
	if chatID == "" {
		return nil, &RPCError{Code: InvalidParams, Message: "chat_id is required"}
	}

	result, err := s.core.CheckPermission(ctx, chatID, paramBool(params, "is_group"), paramString(params, "sender_id"))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Server) handlePermissionCheckWrite(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	chatID := paramString(params, "chat_id")
	if chatID == "" {
		return nil, &RPCError{Code: InvalidParams, Message: "chat_id is required"}
	}

	result, err := s.core.CheckWritePermission(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Server) handlePermissionList(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	records, err := s.core.Permissions().ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"records": records, "total": len(records)}, nil
}

func (s *Server) handlePendingPropose(_ context.Context, params map[string]interface{}) (interface{}, error) {
	actionType := paramString(params, "type")
	operation := paramString(params, "operation")
	target := paramString(params, "target")
	if actionType == "" || operation == "" || target == "" {
		return nil, &RPCError{Code: InvalidParams, Message: "type, operation and target are required"}
	}
	changes, _ := params["changes"].(map[string]interface{})

	receipt, err := s.core.Propose(pending.ActionType(actionType), pending.Operation(operation), target, changes, pending.ProposeOptions{
		TargetDisplay: paramString(params, "target_display"),
		Summary:       paramString(params, "summary"),
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast("pending.proposed", receipt)
	return receipt, nil
}

func (s *Server) handlePendingList(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	actions := s.core.ListPending()
	return map[string]interface{}{"actions": actions, "total": len(actions)}, nil
}

func (s *Server) handlePendingConfirm(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	id := paramString(params, "id")
	if id == "" {
		return nil, &RPCError{Code: InvalidParams, Message: "id is required"}
	}

	result, err := s.core.Confirm(ctx, id)
	if err != nil {
		if errors.Is(err, pending.ErrNotFoundOrExpired) {
			return nil, &RPCError{Code: InvalidParams, Message: err.Error()}
		}
		return nil, err
	}

	s.broadcaster.Broadcast("pending.confirmed", map[string]interface{}{
		"id":      id,
		"success": result.Success,
		"message": result.Message,
	})
	return result, nil
}

func (s *Server) handlePendingCancel(_ context.Context, params map[string]interface{}) (interface{}, error) {
	id := paramString(params, "id")
	if id == "" {
		return nil, &RPCError{Code: InvalidParams, Message: "id is required"}
	}

	if err := s.core.Cancel(id); err != nil {
		if errors.Is(err, pending.ErrNotFoundOrExpired) {
			return nil, &RPCError{Code: InvalidParams, Message: err.Error()}
		}
		return nil, err
	}

	s.broadcaster.Broadcast("pending.cancelled", map[string]interface{}{"id": id})
	return map[string]interface{}{"cancelled": true, "id": id}, nil
}

func paramString(params map[string]interface{}, key string) string {
	s, _ := params[key].(string)
	return s
}

func paramBool(params map[string]interface{}, key string) bool {
	b, _ := params[key].(bool)
	return b
}

func paramInt(params map[string]interface{}, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
