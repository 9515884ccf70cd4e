package usecase

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ContentPlanner/internal/domain"
	"ContentPlanner/internal/planner"
)

type fakeSource struct {
	rows []domain.ItemRow
}

func (f *fakeSource) Rows(_ context.Context) ([]domain.ItemRow, error) {
	return f.rows, nil
}

type fakeLedger struct {
	lastSent  map[int]time.Time
	todaySent []int
	records   []domain.SendRecord
}

func (f *fakeLedger) LastSentDate(_ context.Context, itemID int) (*time.Time, error) {
	if t, ok := f.lastSent[itemID]; ok {
		return &t, nil
	}
	return nil, nil
}

func (f *fakeLedger) TodaySentIDs(_ context.Context, _ time.Time) ([]int, error) {
	return f.todaySent, nil
}

func (f *fakeLedger) LogSent(_ context.Context, rec domain.SendRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeLedger) Stats(_ context.Context, _ int) (domain.SendStats, error) {
	return domain.SendStats{}, nil
}

type fakeNotifier struct {
	posts     []string
	documents []string
	captions  []string
	postErr   error
}

func (f *fakeNotifier) PublishPost(_ context.Context, text string) error {
	if f.postErr != nil {
		return f.postErr
	}
	f.posts = append(f.posts, text)
	return nil
}

func (f *fakeNotifier) PublishDocument(_ context.Context, path, caption string) error {
	f.documents = append(f.documents, path)
	f.captions = append(f.captions, caption)
	return nil
}

type fakeExporter struct {
	plans []domain.Plan
	paths []string
}

func (f *fakeExporter) Render(plan domain.Plan, outputPath string) error {
	f.plans = append(f.plans, plan)
	f.paths = append(f.paths, outputPath)
	// The pipeline publishes the file it rendered, so leave one behind.
	return os.WriteFile(outputPath, []byte("workbook"), 0o644)
}

func weeklyRow(title string) domain.ItemRow {
	one := 1.0
	return domain.ItemRow{Title: title, PerWeek: &one}
}

func monday() time.Time {
	return time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC)
}

func testPipeline(t *testing.T, source *fakeSource, ledger *fakeLedger,
	notifier *fakeNotifier, exporter *fakeExporter) *Pipeline {
	t.Helper()

	rng := rand.New(rand.NewSource(5))
	return NewPipeline(PipelineDeps{
		Source:   source,
		Ledger:   ledger,
		Engine:   planner.NewEngine(source, ledger, rng, nil),
		Selector: planner.NewSelector(ledger, rng),
		Exporter: exporter,
		Notifier: notifier,
		Params: planner.Params{
			Weeks:       1,
			PostsPerDay: 2,
			SlotTimes:   []string{"11:00", "13:00"},
		},
		ExportDir: filepath.Join(t.TempDir(), "schedules"),
	})
}

func TestPlanWeekRendersAndPublishesCalendar(t *testing.T) {
	t.Parallel()

	source := &fakeSource{rows: []domain.ItemRow{weeklyRow("Tip"), weeklyRow("News")}}
	notifier := &fakeNotifier{}
	exporter := &fakeExporter{}
	pipeline := testPipeline(t, source, &fakeLedger{}, notifier, exporter)

	plan, err := pipeline.PlanWeek(context.Background(), monday())
	if err != nil {
		t.Fatalf("PlanWeek: %v", err)
	}

	if len(plan.Entries) != 14 {
		t.Fatalf("expected a total 1-week grid of 14 entries, got %d", len(plan.Entries))
	}
	if len(exporter.paths) != 1 {
		t.Fatalf("expected one render, got %d", len(exporter.paths))
	}
	if base := filepath.Base(exporter.paths[0]); base != "calendar_2026_03_02.xlsx" {
		t.Fatalf("unexpected workbook name: %s", base)
	}
	if len(notifier.documents) != 1 || notifier.documents[0] != exporter.paths[0] {
		t.Fatalf("rendered workbook was not published: %v", notifier.documents)
	}
	if !strings.Contains(notifier.captions[0], "02.03.2026") {
		t.Fatalf("caption misses the start date: %s", notifier.captions[0])
	}
}

func TestPlanWeekWithoutNotifierStillRenders(t *testing.T) {
	t.Parallel()

	source := &fakeSource{rows: []domain.ItemRow{weeklyRow("Tip")}}
	exporter := &fakeExporter{}
	pipeline := testPipeline(t, source, &fakeLedger{}, nil, exporter)
	pipeline.notifier = nil

	if _, err := pipeline.PlanWeek(context.Background(), monday()); err != nil {
		t.Fatalf("PlanWeek: %v", err)
	}
	if len(exporter.paths) != 1 {
		t.Fatalf("expected one render, got %d", len(exporter.paths))
	}
}

func TestSendDuePublishesAndLogs(t *testing.T) {
	t.Parallel()

	source := &fakeSource{rows: []domain.ItemRow{
		{Title: "Tip", Text: "Body", Link: "https://example.org/t", PerWeek: ptr(1.0)},
	}}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	pipeline := testPipeline(t, source, ledger, notifier, &fakeExporter{})

	if err := pipeline.SendDue(context.Background(), monday()); err != nil {
		t.Fatalf("SendDue: %v", err)
	}

	if len(notifier.posts) != 1 {
		t.Fatalf("expected one post, got %d", len(notifier.posts))
	}
	want := "<b>Tip</b>\n\nBody\n\nhttps://example.org/t"
	if notifier.posts[0] != want {
		t.Fatalf("unexpected post body:\n%s", notifier.posts[0])
	}

	if len(ledger.records) != 1 {
		t.Fatalf("expected one ledger record, got %d", len(ledger.records))
	}
	rec := ledger.records[0]
	if rec.ItemID != 2 || !rec.Success || rec.ErrorMsg != "" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestSendDueNothingDueIsNotAnError(t *testing.T) {
	t.Parallel()

	source := &fakeSource{rows: []domain.ItemRow{weeklyRow("Tip")}}
	ledger := &fakeLedger{todaySent: []int{2}}
	notifier := &fakeNotifier{}
	pipeline := testPipeline(t, source, ledger, notifier, &fakeExporter{})

	if err := pipeline.SendDue(context.Background(), monday()); err != nil {
		t.Fatalf("SendDue: %v", err)
	}
	if len(notifier.posts) != 0 {
		t.Fatalf("nothing should have been published, got %v", notifier.posts)
	}
	if len(ledger.records) != 0 {
		t.Fatalf("nothing should have been logged, got %v", ledger.records)
	}
}

func TestSendDueRecordsFailedDelivery(t *testing.T) {
	t.Parallel()

	source := &fakeSource{rows: []domain.ItemRow{weeklyRow("Tip")}}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{postErr: errors.New("telegram unavailable")}
	pipeline := testPipeline(t, source, ledger, notifier, &fakeExporter{})

	err := pipeline.SendDue(context.Background(), monday())
	if err == nil {
		t.Fatal("expected delivery error")
	}

	if len(ledger.records) != 1 {
		t.Fatalf("failed delivery must still be logged, got %d records", len(ledger.records))
	}
	rec := ledger.records[0]
	if rec.Success || rec.ErrorMsg != "telegram unavailable" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func ptr(v float64) *float64 {
	return &v
}
