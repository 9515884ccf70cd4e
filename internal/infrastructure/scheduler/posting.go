package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"ContentPlanner/internal/ports"
)

// PostingScheduler fires the job at each configured time-of-day in the
// configured location.
type PostingScheduler struct {
	times  []clockTime
	loc    *time.Location
	logger *slog.Logger
	stop   chan struct{}
}

type clockTime struct {
	hour   int
	minute int
}

var _ ports.Scheduler = (*PostingScheduler)(nil)

// NewPostingScheduler parses "15:04" posting times; malformed entries fail
// construction rather than silently dropping a slot.
func NewPostingScheduler(times []string, loc *time.Location, logger *slog.Logger) (*PostingScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	parsed := make([]clockTime, 0, len(times))
	for _, raw := range times {
		t, err := time.Parse("15:04", raw)
		if err != nil {
			return nil, fmt.Errorf("malformed posting time %q: %w", raw, err)
		}
		parsed = append(parsed, clockTime{hour: t.Hour(), minute: t.Minute()})
	}
	sort.Slice(parsed, func(i, j int) bool {
		if parsed[i].hour != parsed[j].hour {
			return parsed[i].hour < parsed[j].hour
		}
		return parsed[i].minute < parsed[j].minute
	})

	return &PostingScheduler{times: parsed, loc: loc, logger: logger}, nil
}

// Start launches the trigger loop. Each iteration sleeps until the next
// posting time and invokes the job with the trigger timestamp.
func (p *PostingScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || len(p.times) == 0 {
		return nil
	}
	if p.stop != nil {
		return nil
	}

	p.stop = make(chan struct{})
	go func() {
		for {
			next := p.nextFire(time.Now().In(p.loc))
			timer := time.NewTimer(time.Until(next))
			select {
			case t := <-timer.C:
				p.logger.Debug("posting trigger fired", "at", t.In(p.loc).Format("15:04"))
				job(t.In(p.loc))
			case <-ctx.Done():
				timer.Stop()
				return
			case <-p.stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the trigger goroutine.
func (p *PostingScheduler) Stop(ctx context.Context) error {
	if p.stop == nil {
		return nil
	}
	close(p.stop)
	p.stop = nil
	return nil
}

// nextFire returns the earliest posting time strictly after now.
func (p *PostingScheduler) nextFire(now time.Time) time.Time {
	for _, ct := range p.times {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), ct.hour, ct.minute, 0, 0, p.loc)
		if candidate.After(now) {
			return candidate
		}
	}
	first := p.times[0]
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), first.hour, first.minute, 0, 0, p.loc)
}
