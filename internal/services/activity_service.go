// Package services holds orchestration that spans the domain packages:
// activity recording and the scheduled alert run.
package services

import (
	"context"

	"fintrack/internal/activity"
	"fintrack/internal/log"
)

// ActivityService records audit events without ever failing the caller.
type ActivityService struct {
	publisher activity.Publisher
	logger    *log.Logger
}

func NewActivityService(publisher activity.Publisher, logger *log.Logger) *ActivityService {
	if publisher == nil {
		publisher = activity.NopPublisher{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ActivityService{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentActivity),
	}
}

// Record publishes e. Publish errors are logged; the user action that
// produced the event has already succeeded.
func (s *ActivityService) Record(ctx context.Context, e activity.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish activity event",
			log.FieldEventKind, e.Kind,
			log.FieldUser, e.Actor,
			log.FieldError, err.Error())
	}
}
