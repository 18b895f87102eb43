// Package notify schedules user notifications for incoming messages.
package notify

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/pkg/plugin"
)

// Sink receives notifications. The desktop notifier and the plugin host
// are sinks.
type Sink interface {
	Notify(n plugin.Notification) error
}

// Scheduler fans notifications out to its sinks
type Scheduler struct {
	enabled bool
	sinks   []Sink
	logger  *logging.Logger
}

// NewScheduler creates a scheduler. A disabled scheduler drops everything.
func NewScheduler(enabled bool, logger *logging.Logger, sinks ...Sink) *Scheduler {
	return &Scheduler{
		enabled: enabled,
		sinks:   sinks,
		logger:  logger.With("notify"),
	}
}

// PromptForPushNotifications reports whether notifications will be shown.
// Terminal sessions have no permission prompt.
func (s *Scheduler) PromptForPushNotifications() {
	if !s.enabled {
		s.logger.Info("Notifications are disabled")
		return
	}
	s.logger.Info("Notifications enabled with %d sinks", len(s.sinks))
}

// ScheduleLocalNotification shows msg as coming from from
func (s *Scheduler) ScheduleLocalNotification(ctx context.Context, msg domain.Message, from domain.UserInfo) error {
	if !s.enabled || len(s.sinks) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n := plugin.Notification{
		ID:        uuid.NewString(),
		Account:   msg.To.String(),
		From:      msg.From.String(),
		Title:     title(msg, from),
		Body:      msg.Body,
		Timestamp: msg.Timestamp,
	}
	s.logger.Debug("Scheduling notification %s from %s", n.ID, n.From)

	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Notify(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func title(msg domain.Message, from domain.UserInfo) string {
	switch {
	case from.FullName != "":
		return from.FullName
	case from.Nickname != "":
		return from.Nickname
	default:
		return msg.From.String()
	}
}
