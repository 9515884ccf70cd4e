package planner

import (
	"time"

	"ContentPlanner/internal/domain"
)

// Horizon is the mutable planning grid: weeks of seven days, each day a
// capacity-bounded list of placed items. Days are addressed by a global
// day index (week*7+day) so spacing windows reduce to index arithmetic.
type Horizon struct {
	start    time.Time
	weeks    int
	capacity int
	days     [][]domain.ContentItem // indexed by global day
}

// NewHorizon builds an empty grid starting at the given midnight.
func NewHorizon(start time.Time, weeks, capacity int) *Horizon {
	return &Horizon{
		start:    domain.Midnight(start),
		weeks:    weeks,
		capacity: capacity,
		days:     make([][]domain.ContentItem, weeks*domain.DaysPerWeek),
	}
}

// Start returns the first day of the horizon.
func (h *Horizon) Start() time.Time { return h.start }

// Weeks returns the horizon length.
func (h *Horizon) Weeks() int { return h.weeks }

// Capacity returns the per-day slot limit.
func (h *Horizon) Capacity() int { return h.capacity }

// TotalDays returns the number of days covered.
func (h *Horizon) TotalDays() int { return len(h.days) }

// Date returns the calendar date of a global day index.
func (h *Horizon) Date(day int) time.Time {
	return h.start.AddDate(0, 0, day)
}

// DayIndex composes a global day index from week and weekday offsets.
func DayIndex(week, day int) int {
	return week*domain.DaysPerWeek + day
}

// DayLoad counts the items currently placed on a day.
func (h *Horizon) DayLoad(day int) int {
	return len(h.days[day])
}

// WeekLoad sums the day loads of one week.
func (h *Horizon) WeekLoad(week int) int {
	load := 0
	for d := 0; d < domain.DaysPerWeek; d++ {
		load += h.DayLoad(DayIndex(week, d))
	}
	return load
}

// HasCapacity reports whether the day can still take an item.
func (h *Horizon) HasCapacity(day int) bool {
	return h.DayLoad(day) < h.capacity
}

// Items returns the items placed on a day.
func (h *Horizon) Items(day int) []domain.ContentItem {
	return h.days[day]
}

// Place appends the item to the day. Validity is the caller's concern.
func (h *Horizon) Place(day int, item domain.ContentItem) {
	h.days[day] = append(h.days[day], item)
}

// Remove deletes one occurrence of the item from the day, reporting whether
// anything was removed.
func (h *Horizon) Remove(day int, itemID int) bool {
	posts := h.days[day]
	for i, it := range posts {
		if it.ID == itemID {
			h.days[day] = append(posts[:i], posts[i+1:]...)
			return true
		}
	}
	return false
}

// CanPlace applies the placement validity rules for putting item on day:
// no duplicate on the day, no same-day conflict, no same-item placement
// within the ±2-day window (absolute dates, across week boundaries), and —
// when periodWide is set — no same-item placement anywhere in the full
// ±1 week surrounding the candidate day.
func (h *Horizon) CanPlace(day int, item domain.ContentItem, periodWide bool) bool {
	for _, placed := range h.days[day] {
		if placed.ID == item.ID {
			return false
		}
		if item.ConflictsWith(placed) {
			return false
		}
	}

	for offset := -spacingWindowDays; offset <= spacingWindowDays; offset++ {
		if offset == 0 {
			continue
		}
		d := day + offset
		if d < 0 || d >= len(h.days) {
			continue
		}
		if h.hasItem(d, item.ID) {
			return false
		}
	}

	if periodWide {
		week := day / domain.DaysPerWeek
		firstDay := DayIndex(week-1, 0)
		lastDay := DayIndex(week+2, 0) - 1
		for d := max(firstDay, 0); d <= min(lastDay, len(h.days)-1); d++ {
			if h.hasItem(d, item.ID) {
				return false
			}
		}
	}

	return true
}

func (h *Horizon) hasItem(day, itemID int) bool {
	for _, placed := range h.days[day] {
		if placed.ID == itemID {
			return true
		}
	}
	return false
}

// spacingWindowDays is the same-item exclusion radius around a candidate day.
const spacingWindowDays = 2
