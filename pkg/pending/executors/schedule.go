package executors

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/orienthq/orient/pkg/pending"
)

// Schedule is a persisted recurring task definition.
type Schedule struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Cron    string `json:"cron"`
	Message string `json:"message,omitempty"`
}

// ScheduleStore persists schedule definitions.
type ScheduleStore interface {
	SaveSchedule(ctx context.Context, schedule Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

// ScheduleRegistrar keeps the running scheduler in sync with
// confirmed schedule changes. Optional: without one, changes only
// take effect on restart.
type ScheduleRegistrar interface {
	Apply(id, spec string) error
	Remove(id string)
}

// NewScheduleExecutor builds the executor for schedule actions. The
// action target is the schedule id; changes carry "name", "cron" and
// optionally "message". The cron expression is validated before
// anything is persisted.
func NewScheduleExecutor(store ScheduleStore, registrar ScheduleRegistrar, logger zerolog.Logger) pending.Executor {
	log := logger.With().Str("executor", "schedule").Logger()

	return func(ctx context.Context, action pending.Action) pending.Result {
		scheduleID := action.Target

		if action.Operation == pending.OperationDelete {
			if err := store.DeleteSchedule(ctx, scheduleID); err != nil {
				log.Error().Err(err).Str("scheduleId", scheduleID).Msg("Schedule deletion failed")
				return failure("failed to delete schedule %s: %v", displayTarget(action), err)
			}
			if registrar != nil {
				registrar.Remove(scheduleID)
			}
			return pending.Result{
				Success: true,
				Message: fmt.Sprintf("Deleted schedule %s", displayTarget(action)),
			}
		}

		spec, ok := stringChange(action, "cron")
		if !ok || spec == "" {
			return failure("schedule action for %s is missing a cron expression", displayTarget(action))
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return failure("invalid cron expression %q: %v", spec, err)
		}

		name, _ := stringChange(action, "name")
		if name == "" {
			name = scheduleID
		}
		message, _ := stringChange(action, "message")

		schedule := Schedule{
			ID:      scheduleID,
			Name:    name,
			Cron:    spec,
			Message: message,
		}
		if err := store.SaveSchedule(ctx, schedule); err != nil {
			log.Error().Err(err).Str("scheduleId", scheduleID).Msg("Schedule save failed")
			return failure("failed to save schedule %s: %v", displayTarget(action), err)
		}

		if registrar != nil {
			if err := registrar.Apply(scheduleID, spec); err != nil {
				log.Error().Err(err).Str("scheduleId", scheduleID).Msg("Scheduler registration failed")
				return failure("schedule %s saved but not activated: %v", displayTarget(action), err)
			}
		}

		return pending.Result{
			Success: true,
			Message: fmt.Sprintf("Saved schedule %s (%s)", displayTarget(action), spec),
			Data:    map[string]interface{}{"schedule_id": scheduleID, "cron": spec},
		}
	}
}
