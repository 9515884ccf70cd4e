package planner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"ContentPlanner/internal/domain"
	"ContentPlanner/internal/ports"
)

// ErrNothingDue is returned when no catalog item is currently sendable.
var ErrNothingDue = errors.New("no item is due for sending")

// Selector picks a single item for immediate delivery: due by frequency and
// free of conflicts with anything already sent today.
type Selector struct {
	ledger ports.HistoryLedger
	rng    *rand.Rand
}

// NewSelector wires the ledger and the shared random source.
func NewSelector(ledger ports.HistoryLedger, rng *rand.Rand) *Selector {
	return &Selector{ledger: ledger, rng: rng}
}

// PickDue returns a uniformly random due item, or ErrNothingDue.
func (s *Selector) PickDue(ctx context.Context, items []domain.ContentItem, now time.Time) (domain.ContentItem, error) {
	available, err := s.Available(ctx, items, now)
	if err != nil {
		return domain.ContentItem{}, err
	}
	if len(available) == 0 {
		return domain.ContentItem{}, ErrNothingDue
	}
	return available[s.rng.Intn(len(available))], nil
}

// Available filters the catalog down to items that are due and conflict-free
// against today's ledger entries.
func (s *Selector) Available(ctx context.Context, items []domain.ContentItem, now time.Time) ([]domain.ContentItem, error) {
	todaySent, err := s.ledger.TodaySentIDs(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("today sent ids: %w", err)
	}
	sentSet := map[int]bool{}
	for _, id := range todaySent {
		sentSet[id] = true
	}

	var available []domain.ContentItem
	for _, item := range items {
		if sentSet[item.ID] {
			continue
		}

		lastSent, err := s.ledger.LastSentDate(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("last sent date for item %d: %w", item.ID, err)
		}
		if lastSent != nil && daysBetween(*lastSent, now) < item.FrequencyDays() {
			continue
		}

		if conflictsWithSent(item, sentSet) {
			continue
		}
		available = append(available, item)
	}
	return available, nil
}

func conflictsWithSent(item domain.ContentItem, sentSet map[int]bool) bool {
	for _, id := range item.ConflictIDs {
		if sentSet[id] {
			return true
		}
	}
	return false
}
