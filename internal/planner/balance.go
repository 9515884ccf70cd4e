package planner

import (
	"io"
	"log/slog"
	"math/rand"

	"ContentPlanner/internal/domain"
)

// Balancer post-processes a filled horizon: relieves hotspots, fills the
// remaining slots, and flattens the grid into schedule entries.
type Balancer struct {
	h      *Horizon
	rng    *rand.Rand
	logger *slog.Logger

	emptySlots int
}

// NewBalancer wires the filled grid with the shared random source.
func NewBalancer(h *Horizon, rng *rand.Rand, logger *slog.Logger) *Balancer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Balancer{h: h, rng: rng, logger: logger}
}

// EmptySlots reports how many slots stayed empty after backfill.
func (b *Balancer) EmptySlots() int {
	return b.emptySlots
}

// RelieveHotspots moves one item off any day holding more than
// hotspotThreshold items onto an adjacent empty weekday, when the move
// passes the placement rules. Validity is checked with the item lifted off
// its source day, otherwise its own source occurrence would always sit
// inside the spacing window.
func (b *Balancer) RelieveHotspots() {
	for week := 0; week < b.h.Weeks(); week++ {
		for d := 0; d < domain.DaysPerWeek; d++ {
			day := DayIndex(week, d)
			if b.h.DayLoad(day) <= hotspotThreshold {
				continue
			}
			for _, nd := range []int{d - 1, d + 1} {
				if nd < 0 || nd >= domain.DaysPerWeek {
					continue
				}
				neighbor := DayIndex(week, nd)
				if b.h.DayLoad(neighbor) != 0 {
					continue
				}
				if b.moveOne(day, neighbor) {
					break
				}
			}
		}
	}
}

// moveOne relocates the first movable item from src to dst.
func (b *Balancer) moveOne(src, dst int) bool {
	candidates := append([]domain.ContentItem(nil), b.h.Items(src)...)
	for _, item := range candidates {
		b.h.Remove(src, item.ID)
		periodWide := item.Kind == domain.FrequencyMonthly
		if b.h.CanPlace(dst, item, periodWide) {
			b.h.Place(dst, item)
			b.logger.Debug("rebalanced item", "item", item.Title, "from", src, "to", dst)
			return true
		}
		b.h.Place(src, item)
	}
	return false
}

// Backfill tops every day up to capacity from a shuffled pool of eligible
// items, leaving a slot explicitly open when nothing fits. Group members
// and monthly items keep their period-wide exclusion here too.
func (b *Balancer) Backfill(pool []RankedItem, grouped map[int]bool) {
	items := make([]domain.ContentItem, len(pool))
	for i, r := range pool {
		items[i] = r.Item
	}

	for day := 0; day < b.h.TotalDays(); day++ {
		missing := b.h.Capacity() - b.h.DayLoad(day)
		for n := 0; n < missing; n++ {
			b.rng.Shuffle(len(items), func(i, j int) {
				items[i], items[j] = items[j], items[i]
			})

			placed := false
			for _, item := range items {
				periodWide := item.Kind == domain.FrequencyMonthly || grouped[item.ID]
				if b.h.CanPlace(day, item, periodWide) {
					b.h.Place(day, item)
					placed = true
					break
				}
			}
			if !placed {
				b.emptySlots++
				b.logger.Debug("slot left empty", "date", b.h.Date(day).Format("2006-01-02"))
			}
		}
	}
}

// Flatten emits one ScheduleEntry per (day, slot) in chronological order.
// Items within a day are shuffled across the slot times for variety; days
// are padded to capacity with empty entries so the grid stays total.
func (b *Balancer) Flatten(slotTimes []string) []domain.ScheduleEntry {
	entries := make([]domain.ScheduleEntry, 0, b.h.TotalDays()*b.h.Capacity())

	for day := 0; day < b.h.TotalDays(); day++ {
		date := b.h.Date(day)

		posts := append([]domain.ContentItem(nil), b.h.Items(day)...)
		b.rng.Shuffle(len(posts), func(i, j int) {
			posts[i], posts[j] = posts[j], posts[i]
		})

		for slot := 0; slot < b.h.Capacity(); slot++ {
			entry := domain.ScheduleEntry{Date: date, Time: slotTimes[slot]}
			if slot < len(posts) {
				item := posts[slot]
				entry.ItemID = item.ID
				entry.Title = item.Title
				entry.Link = item.Link
				entry.Photos = len(item.Photos)
				entry.Videos = len(item.Videos)
			}
			entries = append(entries, entry)
		}
	}

	return entries
}
