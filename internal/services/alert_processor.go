package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/activity"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/workspace"
)

// AlertProcessor evaluates the alert rules for every live workspace on a
// cron schedule and publishes alerts that were not raised on the previous
// run. The dashboard evaluates its own alerts on render.
type AlertProcessor struct {
	workspaces *workspace.Registry
	checkers   []AlertChecker
	activity   *ActivityService
	logger     *log.Logger
}

// NewAlertProcessor creates a processor. act may be nil.
func NewAlertProcessor(workspaces *workspace.Registry, checkers []AlertChecker, act *ActivityService, logger *log.Logger) *AlertProcessor {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AlertProcessor{
		workspaces: workspaces,
		checkers:   checkers,
		activity:   act,
		logger:     logger.WithComponent(log.ComponentAlerts),
	}
}

// SnapshotOf captures the alert-relevant state of ws.
func SnapshotOf(ws *workspace.Workspace) Snapshot {
	return Snapshot{
		Owner:    ws.Owner,
		Settings: ws.Settings(),
		Budgets:  ws.Budgets.List(),
		Goals:    ws.Goals.List(),
	}
}

// RunOnce evaluates every workspace and returns the number of alerts that
// were not present on the previous run.
func (p *AlertProcessor) RunOnce(ctx context.Context, now time.Time) int {
	raised := 0
	checked := 0

	p.workspaces.Each(func(ws *workspace.Workspace) {
		checked++
		previous := ws.Alerts()
		current := Evaluate(p.checkers, SnapshotOf(ws), now)
		ws.SetAlerts(current)

		for _, a := range current {
			if containsAlert(previous, a) {
				continue
			}
			raised++
			p.logger.InfoContext(ctx, "Alert raised",
				log.FieldUser, ws.Owner,
				"alert_kind", a.Kind,
				"subject", a.Subject,
				"tier", a.Tier.String())
			if p.activity != nil {
				p.activity.Record(ctx, activity.New(activity.KindAlert, ws.Owner, a.Message))
			}
		}
	})

	p.logger.DebugContext(ctx, "Alert evaluation complete",
		"workspaces", checked,
		"raised", raised)
	return raised
}

func containsAlert(alerts []core.Alert, a core.Alert) bool {
	for _, b := range alerts {
		if b.Kind == a.Kind && b.Subject == a.Subject && b.Tier == a.Tier {
			return true
		}
	}
	return false
}

// Run evaluates alerts on schedule (standard cron syntax or descriptors
// such as "@every 1h") until ctx is cancelled.
func (p *AlertProcessor) Run(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		p.RunOnce(ctx, time.Now())
	}); err != nil {
		return fmt.Errorf("invalid alert schedule %q: %w", schedule, err)
	}

	p.logger.InfoContext(ctx, "Alert scheduler started", "schedule", schedule)
	c.Start()

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()

	p.logger.InfoContext(ctx, "Alert scheduler stopped")
	return nil
}
