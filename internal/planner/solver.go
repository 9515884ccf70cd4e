package planner

import (
	"io"
	"log/slog"
	"math/rand"

	"ContentPlanner/internal/domain"
)

// maxPlacementAttempts bounds the search per placement target so the solver
// terminates on over-constrained input.
const maxPlacementAttempts = 50

// hotspotThreshold is the day load above which the balancer tries to shed
// an item onto an empty neighbor.
const hotspotThreshold = 2

// Solver fills a horizon with placements using least-loaded-day selection,
// alternation rotation and the spacing/conflict rules of the horizon.
type Solver struct {
	h      *Horizon
	rng    *rand.Rand
	logger *slog.Logger

	shortfalls []domain.Shortfall
}

// NewSolver wires the grid with an injected random source. The source drives
// every tie-break and shuffle so a fixed seed reproduces a schedule.
func NewSolver(h *Horizon, rng *rand.Rand, logger *slog.Logger) *Solver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Solver{h: h, rng: rng, logger: logger}
}

// Shortfalls lists the placement deficits accumulated so far.
func (s *Solver) Shortfalls() []domain.Shortfall {
	return s.shortfalls
}

// PlaceWeekly runs the weekly pass: for every week of the horizon, rotate
// each weekly alternation group, then place the standalone weekly items in
// the given priority order.
func (s *Solver) PlaceWeekly(groups []domain.AlternationGroup, ranked []RankedItem) {
	for week := 0; week < s.h.Weeks(); week++ {
		for _, group := range groups {
			if group.Kind != domain.FrequencyWeekly || group.SkipsPeriod(week) {
				continue
			}
			member := group.Pick(week)
			s.placeInWeek(member, group.Frequency, week, true)
		}

		for _, r := range ranked {
			item := r.Item
			if item.Kind != domain.FrequencyWeekly {
				continue
			}
			if item.Interval == 2 && week%2 != 0 {
				continue
			}
			s.placeInWeek(item, item.Frequency, week, false)
		}
	}
}

// PlaceMonthly runs the monthly pass over four-week blocks, including the
// trailing partial block when the horizon is not a whole number of months.
func (s *Solver) PlaceMonthly(groups []domain.AlternationGroup, ranked []RankedItem) {
	months := s.h.Weeks()/domain.WeeksPerMonth + 1
	for month := 0; month < months; month++ {
		startWeek := month * domain.WeeksPerMonth
		endWeek := min((month+1)*domain.WeeksPerMonth, s.h.Weeks())
		if startWeek >= endWeek {
			continue
		}

		for _, group := range groups {
			if group.Kind != domain.FrequencyMonthly || group.SkipsPeriod(month) {
				continue
			}
			member := group.Pick(month)
			s.placeInMonth(member, group.Frequency, month, startWeek, endWeek)
		}

		for _, r := range ranked {
			item := r.Item
			if item.Kind != domain.FrequencyMonthly {
				continue
			}
			if item.Interval == 2 && month%2 != 0 {
				continue
			}
			s.placeInMonth(item, item.Frequency, month, startWeek, endWeek)
		}
	}
}

// placeInWeek tries to place the item target times within one week,
// charging failed rounds against the attempt budget.
func (s *Solver) placeInWeek(item domain.ContentItem, target, week int, periodWide bool) {
	placed := 0
	attempts := 0

	for placed < target && attempts < maxPlacementAttempts {
		day, ok := s.pickDayInWeek(item, week, periodWide)
		if !ok {
			attempts++
			if !s.weekHasCapacity(week) {
				break
			}
			continue
		}
		s.h.Place(day, item)
		placed++
	}

	s.recordShortfall(item, week, placed, target)
}

// placeInMonth walks candidate weeks by ascending load, then days within
// the week, applying the period-wide exclusion.
func (s *Solver) placeInMonth(item domain.ContentItem, target, month, startWeek, endWeek int) {
	placed := 0
	attempts := 0

	for placed < target && attempts < maxPlacementAttempts {
		found := false
		for _, week := range s.weeksByLoad(startWeek, endWeek) {
			if day, ok := s.pickDayInWeek(item, week, true); ok {
				s.h.Place(day, item)
				placed++
				found = true
				break
			}
		}
		if !found {
			attempts++
		}
	}

	s.recordShortfall(item, month, placed, target)
}

// pickDayInWeek selects the least-loaded valid day of the week for the item,
// breaking load ties uniformly at random.
func (s *Solver) pickDayInWeek(item domain.ContentItem, week int, periodWide bool) (int, bool) {
	minLoad := -1
	var best []int

	for d := 0; d < domain.DaysPerWeek; d++ {
		day := DayIndex(week, d)
		if !s.h.HasCapacity(day) {
			continue
		}
		if !s.h.CanPlace(day, item, periodWide) {
			continue
		}
		load := s.h.DayLoad(day)
		switch {
		case minLoad < 0 || load < minLoad:
			minLoad = load
			best = []int{day}
		case load == minLoad:
			best = append(best, day)
		}
	}

	if len(best) == 0 {
		return 0, false
	}
	return best[s.rng.Intn(len(best))], true
}

// weeksByLoad orders the weeks of a month block by ascending total load.
// Equal loads keep a random relative order.
func (s *Solver) weeksByLoad(startWeek, endWeek int) []int {
	weeks := make([]int, 0, endWeek-startWeek)
	for w := startWeek; w < endWeek; w++ {
		weeks = append(weeks, w)
	}
	s.rng.Shuffle(len(weeks), func(i, j int) {
		weeks[i], weeks[j] = weeks[j], weeks[i]
	})
	for i := 1; i < len(weeks); i++ {
		for j := i; j > 0 && s.h.WeekLoad(weeks[j]) < s.h.WeekLoad(weeks[j-1]); j-- {
			weeks[j], weeks[j-1] = weeks[j-1], weeks[j]
		}
	}
	return weeks
}

func (s *Solver) weekHasCapacity(week int) bool {
	for d := 0; d < domain.DaysPerWeek; d++ {
		if s.h.HasCapacity(DayIndex(week, d)) {
			return true
		}
	}
	return false
}

func (s *Solver) recordShortfall(item domain.ContentItem, period, placed, target int) {
	if placed >= target {
		return
	}
	s.logger.Warn("placement target missed",
		"item", item.Title, "period", period, "placed", placed, "target", target)
	s.shortfalls = append(s.shortfalls, domain.Shortfall{
		Item:     item,
		Period:   period,
		Achieved: placed,
		Target:   target,
	})
}
