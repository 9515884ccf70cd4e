// Package catalog normalizes raw content-item rows into typed placement
// requests: standalone items and alternation groups.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"ContentPlanner/internal/domain"
)

// ErrInvalidSpec marks malformed catalog input. Normalization fails fast:
// no partial catalog is returned.
var ErrInvalidSpec = errors.New("invalid catalog spec")

// firstRowNumber is the catalog row number of the first data row. Row
// numbers are the stable item ids and match the 1-based source document
// with its header row, so data starts at 2.
const firstRowNumber = 2

// Catalog is the normalized output: items keyed by placement mode.
type Catalog struct {
	Items  []domain.ContentItem // all items, in row order
	Groups []domain.AlternationGroup
}

// Standalone returns the items that are not members of any alternation group.
func (c Catalog) Standalone() []domain.ContentItem {
	grouped := map[int]bool{}
	for _, g := range c.Groups {
		for _, m := range g.Members {
			grouped[m.ID] = true
		}
	}
	var out []domain.ContentItem
	for _, it := range c.Items {
		if !grouped[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

// ItemByID looks an item up by its row number.
func (c Catalog) ItemByID(id int) (domain.ContentItem, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.ContentItem{}, false
}

// Normalize validates rows and produces items plus alternation groups.
// Pure transform: rows are never mutated.
func Normalize(rows []domain.ItemRow) (Catalog, error) {
	var cat Catalog

	for i, row := range rows {
		rowNumber := firstRowNumber + i

		if row.PerWeek != nil && row.PerMonth != nil {
			return Catalog{}, fmt.Errorf("row %d (%s): both weekly and monthly frequency set: %w",
				rowNumber, row.Title, ErrInvalidSpec)
		}
		if row.PerWeek == nil && row.PerMonth == nil {
			return Catalog{}, fmt.Errorf("row %d (%s): no frequency set: %w",
				rowNumber, row.Title, ErrInvalidSpec)
		}

		kind := domain.FrequencyWeekly
		raw := row.PerWeek
		if row.PerMonth != nil {
			kind = domain.FrequencyMonthly
			raw = row.PerMonth
		}

		frequency, interval, err := splitFrequency(*raw)
		if err != nil {
			return Catalog{}, fmt.Errorf("row %d (%s): %w", rowNumber, row.Title, err)
		}

		cat.Items = append(cat.Items, domain.ContentItem{
			ID:          rowNumber,
			Title:       row.Title,
			Text:        row.Text,
			Link:        row.Link,
			Kind:        kind,
			Frequency:   frequency,
			Interval:    interval,
			ConflictIDs: row.ConflictIDs,
			Photos:      row.Photos,
			Videos:      row.Videos,
		})
	}

	groups, err := resolveGroups(rows, cat)
	if err != nil {
		return Catalog{}, err
	}
	cat.Groups = groups

	return cat, nil
}

// splitFrequency maps a declared frequency onto (per-period count, interval).
// Exactly 0.5 means once every other period; everything else must be a
// positive integer.
func splitFrequency(value float64) (int, int, error) {
	if value == 0.5 {
		return 1, 2, nil
	}
	if value <= 0 || value != math.Trunc(value) {
		return 0, 0, fmt.Errorf("frequency %v is not 0.5 or a positive integer: %w", value, ErrInvalidSpec)
	}
	return int(value), 1, nil
}

// resolveGroups builds alternation groups from row references. A group is
// keyed by the sorted set of member row numbers, so it is recognized no
// matter which member declares it.
func resolveGroups(rows []domain.ItemRow, cat Catalog) ([]domain.AlternationGroup, error) {
	type groupSpec struct {
		members []int // sorted row numbers
	}
	var specs []groupSpec
	seen := map[string]bool{}
	memberOf := map[int]string{}

	lastRow := firstRowNumber + len(rows) - 1

	for i, row := range rows {
		if len(row.AlternateRows) == 0 {
			continue
		}
		rowNumber := firstRowNumber + i

		members := append([]int{rowNumber}, row.AlternateRows...)
		for _, ref := range row.AlternateRows {
			if ref < firstRowNumber || ref > lastRow {
				return nil, fmt.Errorf("row %d (%s): alternation reference to nonexistent row %d: %w",
					rowNumber, row.Title, ref, ErrInvalidSpec)
			}
		}

		sort.Ints(members)
		members = dedupInts(members)
		if len(members) < 2 {
			return nil, fmt.Errorf("row %d (%s): alternation group needs at least two members: %w",
				rowNumber, row.Title, ErrInvalidSpec)
		}

		key := fmt.Sprint(members)
		if seen[key] {
			continue
		}
		for _, m := range members {
			if other, ok := memberOf[m]; ok && other != key {
				return nil, fmt.Errorf("row %d belongs to more than one alternation group: %w",
					m, ErrInvalidSpec)
			}
			memberOf[m] = key
		}
		seen[key] = true
		specs = append(specs, groupSpec{members: members})
	}

	var groups []domain.AlternationGroup
	for _, spec := range specs {
		group := domain.AlternationGroup{}
		for _, id := range spec.members {
			item, ok := cat.ItemByID(id)
			if !ok {
				return nil, fmt.Errorf("alternation member row %d not found: %w", id, ErrInvalidSpec)
			}
			group.Members = append(group.Members, item)
		}

		first := group.Members[0]
		group.Kind = first.Kind
		group.Frequency = first.Frequency
		group.Interval = first.Interval
		for _, m := range group.Members[1:] {
			if m.Kind != group.Kind {
				return nil, fmt.Errorf("alternation group %v mixes weekly and monthly items: %w",
					spec.members, ErrInvalidSpec)
			}
		}
		groups = append(groups, group)
	}

	return groups, nil
}

func dedupInts(sorted []int) []int {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
