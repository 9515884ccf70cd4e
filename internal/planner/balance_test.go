package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelieveHotspotsMovesOntoEmptyNeighbor(t *testing.T) {
	t.Parallel()

	h := NewHorizon(planStart(), 1, 5)
	day := DayIndex(0, 2)
	h.Place(day, weeklyItem(2, "A", 1))
	h.Place(day, weeklyItem(3, "B", 1))
	h.Place(day, weeklyItem(4, "C", 1))

	balancer := NewBalancer(h, testRNG(37), nil)
	balancer.RelieveHotspots()

	require.Equal(t, 2, h.DayLoad(day))
	require.Equal(t, 1, h.DayLoad(DayIndex(0, 1))+h.DayLoad(DayIndex(0, 3)))
	assertHorizonSpacing(t, h)
}

func TestRelieveHotspotsLeavesBalancedDaysAlone(t *testing.T) {
	t.Parallel()

	h := NewHorizon(planStart(), 1, 5)
	day := DayIndex(0, 2)
	h.Place(day, weeklyItem(2, "A", 1))
	h.Place(day, weeklyItem(3, "B", 1))

	NewBalancer(h, testRNG(37), nil).RelieveHotspots()

	require.Equal(t, 2, h.DayLoad(day))
	require.Equal(t, 0, h.WeekLoad(0)-h.DayLoad(day))
}

func TestRelieveHotspotsSkipsOccupiedNeighbors(t *testing.T) {
	t.Parallel()

	h := NewHorizon(planStart(), 1, 5)
	day := DayIndex(0, 2)
	h.Place(day, weeklyItem(2, "A", 1))
	h.Place(day, weeklyItem(3, "B", 1))
	h.Place(day, weeklyItem(4, "C", 1))
	h.Place(DayIndex(0, 1), weeklyItem(5, "D", 1))
	h.Place(DayIndex(0, 3), weeklyItem(6, "E", 1))

	NewBalancer(h, testRNG(41), nil).RelieveHotspots()

	// Both neighbors already hold a post, so the hotspot stays as is.
	require.Equal(t, 3, h.DayLoad(day))
}

func TestBackfillFillsAndCountsEmptySlots(t *testing.T) {
	t.Parallel()

	h := NewHorizon(planStart(), 1, 1)
	pool := []RankedItem{{Item: weeklyItem(2, "Solo", 1), Priority: 100}}

	balancer := NewBalancer(h, testRNG(43), nil)
	balancer.Backfill(pool, nil)

	placed := 0
	for day := 0; day < h.TotalDays(); day++ {
		placed += h.DayLoad(day)
	}
	// A single item can appear on at most every third day of the week.
	require.Equal(t, 3, placed)
	require.Equal(t, 4, balancer.EmptySlots())
	assertHorizonSpacing(t, h)
}

func TestBackfillRespectsPeriodWideForGroupMembers(t *testing.T) {
	t.Parallel()

	member := weeklyItem(2, "Rotated", 1)
	h := NewHorizon(planStart(), 3, 1)
	h.Place(DayIndex(1, 3), member)

	balancer := NewBalancer(h, testRNG(47), nil)
	balancer.Backfill([]RankedItem{{Item: member, Priority: 100}}, map[int]bool{member.ID: true})

	// A group member already placed in week 1 blocks every other day of
	// weeks 0 through 2, so nothing else fits on this horizon.
	total := 0
	for day := 0; day < h.TotalDays(); day++ {
		total += h.DayLoad(day)
	}
	require.Equal(t, 1, total)
	require.Equal(t, h.TotalDays()-1, balancer.EmptySlots())
}

func TestFlattenEmitsTotalChronologicalGrid(t *testing.T) {
	t.Parallel()

	h := NewHorizon(planStart(), 1, 2)
	a := weeklyItem(2, "A", 1)
	a.Link = "https://example.org/a"
	a.Photos = []string{"a.jpg"}
	h.Place(DayIndex(0, 0), a)
	h.Place(DayIndex(0, 4), weeklyItem(3, "B", 1))

	balancer := NewBalancer(h, testRNG(53), nil)
	entries := balancer.Flatten([]string{"11:00", "16:00"})

	require.Len(t, entries, 14)
	for i, entry := range entries {
		require.Equal(t, planStart().AddDate(0, 0, i/2), entry.Date)
		if i%2 == 0 {
			require.Equal(t, "11:00", entry.Time)
		} else {
			require.Equal(t, "16:00", entry.Time)
		}
	}

	// Day 0 holds A in one of its two slots; the other slot is empty.
	first := entries[0]
	second := entries[1]
	require.True(t, first.Empty() != second.Empty())
	filled := first
	if filled.Empty() {
		filled = second
	}
	require.Equal(t, 2, filled.ItemID)
	require.Equal(t, "A", filled.Title)
	require.Equal(t, "https://example.org/a", filled.Link)
	require.Equal(t, 1, filled.Photos)

	empties := 0
	for _, entry := range entries {
		if entry.Empty() {
			empties++
		}
	}
	require.Equal(t, 12, empties)
}
