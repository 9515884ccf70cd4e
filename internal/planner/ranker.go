package planner

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"ContentPlanner/internal/domain"
	"ContentPlanner/internal/ports"
)

// Priority bounds. An item that was never sent gets maximum priority; an
// overdue item climbs from duePriority by overduePointsPerDay per day late,
// capped at maxPriority.
const (
	maxPriority         = 100.0
	duePriority         = 50.0
	overduePointsPerDay = 5.0
)

// RankedItem pairs an item with its computed placement priority.
type RankedItem struct {
	Item     domain.ContentItem
	Priority float64
}

// Priority scores one item against its last successful send. Items not yet
// due score zero and are excluded from placement.
func Priority(item domain.ContentItem, today time.Time, lastSent *time.Time) float64 {
	if lastSent == nil {
		return maxPriority
	}

	elapsed := daysBetween(*lastSent, today)
	frequencyDays := item.FrequencyDays()

	switch {
	case elapsed < frequencyDays:
		return 0
	case elapsed == frequencyDays:
		return duePriority
	default:
		overdue := float64(elapsed-frequencyDays) * overduePointsPerDay
		return duePriority + min(overdue, maxPriority-duePriority)
	}
}

// RankEligible queries the ledger once per item and returns the due items
// sorted by descending priority. Ties fall in random order: the pre-sort
// shuffle combined with a stable sort keeps equal-priority ordering up to
// the injected source.
func RankEligible(ctx context.Context, items []domain.ContentItem, today time.Time,
	ledger ports.HistoryLedger, rng *rand.Rand) ([]RankedItem, error) {

	var ranked []RankedItem
	for _, item := range items {
		var lastSent *time.Time
		if ledger != nil {
			var err error
			lastSent, err = ledger.LastSentDate(ctx, item.ID)
			if err != nil {
				return nil, fmt.Errorf("last sent date for item %d: %w", item.ID, err)
			}
		}

		priority := Priority(item, today, lastSent)
		if priority <= 0 {
			continue
		}
		ranked = append(ranked, RankedItem{Item: item, Priority: priority})
	}

	if rng != nil {
		rng.Shuffle(len(ranked), func(i, j int) {
			ranked[i], ranked[j] = ranked[j], ranked[i]
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})

	return ranked, nil
}

// daysBetween returns the whole days from a to b, comparing at midnight.
func daysBetween(a, b time.Time) int {
	a = domain.Midnight(a)
	b = domain.Midnight(b.In(a.Location()))
	return int(b.Sub(a).Hours() / 24)
}
