package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ContentPlanner/internal/domain"
)

func openTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()
	ledger, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

func TestLastSentDateEmptyHistory(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)

	got, err := ledger.LastSentDate(context.Background(), 2)
	if err != nil {
		t.Fatalf("LastSentDate: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unseen item, got %v", got)
	}
}

func TestLastSentDateReturnsLatestSuccess(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)
	ctx := context.Background()

	for _, rec := range []domain.SendRecord{
		{ItemID: 2, Title: "Tip", SentAt: time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC), Channel: 1, Success: true},
		{ItemID: 2, Title: "Tip", SentAt: time.Date(2026, 8, 10, 11, 0, 0, 0, time.UTC), Channel: 1, Success: true},
		{ItemID: 2, Title: "Tip", SentAt: time.Date(2026, 8, 15, 11, 0, 0, 0, time.UTC), Channel: 1,
			Success: false, ErrorMsg: "telegram timeout"},
	} {
		if err := ledger.LogSent(ctx, rec); err != nil {
			t.Fatalf("LogSent: %v", err)
		}
	}

	got, err := ledger.LastSentDate(ctx, 2)
	if err != nil {
		t.Fatalf("LastSentDate: %v", err)
	}
	if got == nil {
		t.Fatal("expected a date, got nil")
	}
	// The failed attempt on the 15th must not count.
	if want := "2026-08-10"; got.Format("2006-01-02") != want {
		t.Fatalf("expected %s, got %s", want, got.Format("2006-01-02"))
	}
}

func TestTodaySentIDsDeduplicatesAndFiltersByDay(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)
	ctx := context.Background()
	today := time.Date(2026, 8, 20, 13, 0, 0, 0, time.UTC)

	for _, rec := range []domain.SendRecord{
		{ItemID: 2, Title: "Tip", SentAt: today, Channel: 1, Success: true},
		{ItemID: 2, Title: "Tip", SentAt: today, Channel: 2, Success: true},
		{ItemID: 3, Title: "News", SentAt: today, Channel: 1, Success: true},
		{ItemID: 4, Title: "Old", SentAt: today.AddDate(0, 0, -1), Channel: 1, Success: true},
		{ItemID: 5, Title: "Failed", SentAt: today, Channel: 1, Success: false, ErrorMsg: "kicked"},
	} {
		if err := ledger.LogSent(ctx, rec); err != nil {
			t.Fatalf("LogSent: %v", err)
		}
	}

	ids, err := ledger.TodaySentIDs(ctx, today)
	if err != nil {
		t.Fatalf("TodaySentIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected ids [2 3], got %v", ids)
	}
	seen := map[int]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[2] || !seen[3] {
		t.Fatalf("expected ids 2 and 3, got %v", ids)
	}
}

func TestStatsAggregatesHistory(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)
	ctx := context.Background()

	for _, rec := range []domain.SendRecord{
		{ItemID: 2, Title: "Tip", SentAt: time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC), Channel: 1, Success: true},
		{ItemID: 2, Title: "Tip", SentAt: time.Date(2026, 8, 8, 11, 0, 0, 0, time.UTC), Channel: 1, Success: true},
		{ItemID: 2, Title: "Tip", SentAt: time.Date(2026, 8, 9, 11, 0, 0, 0, time.UTC), Channel: 1,
			Success: false, ErrorMsg: "timeout"},
		{ItemID: 3, Title: "Other", SentAt: time.Date(2026, 8, 9, 11, 0, 0, 0, time.UTC), Channel: 1, Success: true},
	} {
		if err := ledger.LogSent(ctx, rec); err != nil {
			t.Fatalf("LogSent: %v", err)
		}
	}

	stats, err := ledger.Stats(ctx, 2)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalSent != 2 {
		t.Fatalf("expected 2 successful sends, got %d", stats.TotalSent)
	}
	if stats.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", stats.Errors)
	}
	if stats.LastSent == nil || stats.LastSent.Format("2006-01-02") != "2026-08-08" {
		t.Fatalf("unexpected last sent: %v", stats.LastSent)
	}
}

func TestStatsUnknownItemIsZero(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)

	stats, err := ledger.Stats(context.Background(), 99)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalSent != 0 || stats.Errors != 0 || stats.LastSent != nil {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
