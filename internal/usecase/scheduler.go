package usecase

import (
	"context"
	"time"

	"ContentPlanner/internal/ports"
)

// Scheduler wires the posting-time driver with the pipeline: every trigger
// sends the due post, and the first trigger of a Monday also regenerates
// and publishes the weekly calendar.
type Scheduler struct {
	driver    ports.Scheduler
	pipeline  *Pipeline
	firstSlot string // "15:04" clock time of the day's first posting slot
}

// NewScheduler returns a helper to start/stop the recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, firstSlot string) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, firstSlot: firstSlot}
}

// Start registers the trigger job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if trigger.Weekday() == time.Monday && trigger.Format("15:04") == s.firstSlot {
			_, _ = s.pipeline.PlanWeek(ctx, trigger)
		}
		_ = s.pipeline.SendDue(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
