package domain

import (
	"math"
	"time"
)

// FrequencyKind distinguishes the period a frequency target is evaluated over.
type FrequencyKind string

const (
	FrequencyWeekly  FrequencyKind = "weekly"
	FrequencyMonthly FrequencyKind = "monthly"
)

// Days per period; months are approximated as four weeks throughout.
const (
	DaysPerWeek   = 7
	WeeksPerMonth = 4
	DaysPerMonth  = DaysPerWeek * WeeksPerMonth
)

// ItemRow is one raw catalog row as provided by the catalog collaborator.
// Exactly one of PerWeek/PerMonth must be set; AlternateRows holds 1-based
// catalog row numbers of the other members of an alternation group.
type ItemRow struct {
	Title         string
	Text          string
	Link          string
	PerWeek       *float64
	PerMonth      *float64
	AlternateRows []int
	ConflictIDs   []int
	Photos        []string
	Videos        []string
}

// ContentItem is a recurring post definition normalized from a catalog row.
type ContentItem struct {
	ID          int // catalog row number, stable across runs
	Title       string
	Text        string
	Link        string
	Kind        FrequencyKind
	Frequency   int // placements per period
	Interval    int // 1 = every period, 2 = every other period
	ConflictIDs []int
	Photos      []string
	Videos      []string
}

// FrequencyDays converts the period target into a repeat interval in days,
// using the four-week month approximation.
func (it ContentItem) FrequencyDays() int {
	periodDays := DaysPerWeek
	if it.Kind == FrequencyMonthly {
		periodDays = DaysPerMonth
	}
	if it.Frequency <= 0 {
		return periodDays * it.Interval
	}
	return int(math.Round(float64(periodDays*it.Interval) / float64(it.Frequency)))
}

// ConflictsWith reports whether either item forbids sharing a day with the other.
func (it ContentItem) ConflictsWith(other ContentItem) bool {
	for _, id := range it.ConflictIDs {
		if id == other.ID {
			return true
		}
	}
	for _, id := range other.ConflictIDs {
		if id == it.ID {
			return true
		}
	}
	return false
}

// AlternationGroup is a set of items taking turns in one rotation slot.
// Member order determines the rotation sequence.
type AlternationGroup struct {
	Members   []ContentItem
	Kind      FrequencyKind
	Frequency int
	Interval  int
}

// Pick returns the member due in the given period. The cursor is computed,
// never stored: Members[(period/Interval)%len(Members)].
func (g AlternationGroup) Pick(period int) ContentItem {
	interval := g.Interval
	if interval < 1 {
		interval = 1
	}
	return g.Members[(period/interval)%len(g.Members)]
}

// SkipsPeriod reports whether the group publishes nothing in this period
// (interval-2 groups rest on odd periods).
func (g AlternationGroup) SkipsPeriod(period int) bool {
	return g.Interval == 2 && period%2 != 0
}

// ScheduleEntry is one finalized (day, slot) cell of the flattened plan.
// ItemID zero marks an explicitly empty slot.
type ScheduleEntry struct {
	Date   time.Time
	Time   string // clock time "15:04"
	ItemID int
	Title  string
	Link   string
	Photos int
	Videos int
}

// Empty reports whether the slot carries no item.
func (e ScheduleEntry) Empty() bool {
	return e.ItemID == 0
}

// Shortfall records an item that missed its placement target in a period.
type Shortfall struct {
	Item     ContentItem
	Period   int
	Achieved int
	Target   int
}

// Plan is the result of one planning run: a total grid of entries plus
// non-fatal diagnostics.
type Plan struct {
	RunID      string
	Start      time.Time
	Weeks      int
	Entries    []ScheduleEntry
	Shortfalls []Shortfall
	EmptySlots int
}

// SendRecord is one delivery attempt as stored in the history ledger.
type SendRecord struct {
	ItemID   int
	Title    string
	SentAt   time.Time
	Channel  int64
	Success  bool
	ErrorMsg string
}

// SendStats aggregates ledger history for a single item.
type SendStats struct {
	TotalSent int
	LastSent  *time.Time
	Errors    int
}

// Midnight normalizes a timestamp to the start of its day, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
