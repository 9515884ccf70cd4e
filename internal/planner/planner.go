// Package planner implements the slot-assignment engine: it turns a
// normalized catalog plus send history into a concrete day-by-day,
// slot-by-slot schedule over a multi-week horizon.
package planner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"ContentPlanner/internal/catalog"
	"ContentPlanner/internal/domain"
	"ContentPlanner/internal/ports"
)

// Params are the invocation parameters of one planning run.
type Params struct {
	Weeks       int
	PostsPerDay int
	StartDate   time.Time // zero value means today at midnight
	SlotTimes   []string  // clock times, one per slot, "15:04"
}

func (p Params) validate() error {
	if p.Weeks <= 0 {
		return fmt.Errorf("horizon must span at least one week, got %d", p.Weeks)
	}
	if p.PostsPerDay <= 0 {
		return fmt.Errorf("posts per day must be positive, got %d", p.PostsPerDay)
	}
	if len(p.SlotTimes) < p.PostsPerDay {
		return fmt.Errorf("%d slot times configured for %d posts per day",
			len(p.SlotTimes), p.PostsPerDay)
	}
	return nil
}

// Engine runs the four placement stages over its read-only collaborators.
// Each run owns a fresh horizon; no state crosses invocations.
type Engine struct {
	source ports.CatalogSource
	ledger ports.HistoryLedger
	rng    *rand.Rand
	logger *slog.Logger
}

// NewEngine wires the collaborators and the injected random source.
func NewEngine(source ports.CatalogSource, ledger ports.HistoryLedger,
	rng *rand.Rand, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{source: source, ledger: ledger, rng: rng, logger: logger}
}

// BuildPlan executes normalize → rank → solve → balance and returns the
// flattened schedule. Structural catalog errors abort; placement deficits
// and empty slots come back on the Plan.
func (e *Engine) BuildPlan(ctx context.Context, params Params) (domain.Plan, error) {
	if err := params.validate(); err != nil {
		return domain.Plan{}, err
	}

	start := params.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	start = domain.Midnight(start)

	rows, err := e.source.Rows(ctx)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("load catalog: %w", err)
	}

	cat, err := catalog.Normalize(rows)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("normalize catalog: %w", err)
	}

	return e.planCatalog(ctx, cat, start, params)
}

func (e *Engine) planCatalog(ctx context.Context, cat catalog.Catalog,
	start time.Time, params Params) (domain.Plan, error) {

	// Rank every item once up front; the solver works from the standalone
	// subset while backfill may draw on any eligible item, grouped or not.
	ranked, err := RankEligible(ctx, cat.Items, start, e.ledger, e.rng)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("rank items: %w", err)
	}

	grouped := map[int]bool{}
	for _, g := range cat.Groups {
		for _, m := range g.Members {
			grouped[m.ID] = true
		}
	}
	var standalone []RankedItem
	for _, r := range ranked {
		if !grouped[r.Item.ID] {
			standalone = append(standalone, r)
		}
	}

	e.logger.Info("planning run",
		"weeks", params.Weeks, "eligible", len(ranked), "groups", len(cat.Groups),
		"start", start.Format("2006-01-02"))
	if rec := RecommendedPostsPerDay(cat, params.Weeks); params.PostsPerDay < rec {
		e.logger.Warn("daily capacity below recommendation",
			"posts_per_day", params.PostsPerDay, "recommended", rec)
	}

	horizon := NewHorizon(start, params.Weeks, params.PostsPerDay)

	solver := NewSolver(horizon, e.rng, e.logger)
	solver.PlaceWeekly(cat.Groups, standalone)
	solver.PlaceMonthly(cat.Groups, standalone)

	balancer := NewBalancer(horizon, e.rng, e.logger)
	balancer.RelieveHotspots()
	balancer.Backfill(ranked, grouped)
	entries := balancer.Flatten(params.SlotTimes[:params.PostsPerDay])

	plan := domain.Plan{
		RunID:      uuid.NewString(),
		Start:      start,
		Weeks:      params.Weeks,
		Entries:    entries,
		Shortfalls: solver.Shortfalls(),
		EmptySlots: balancer.EmptySlots(),
	}
	e.logger.Info("planning run done",
		"run_id", plan.RunID, "entries", len(plan.Entries),
		"shortfalls", len(plan.Shortfalls), "empty_slots", plan.EmptySlots)
	return plan, nil
}
