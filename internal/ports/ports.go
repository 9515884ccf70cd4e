package ports

import (
	"context"
	"time"

	"ContentPlanner/internal/domain"
)

// CatalogSource provides the raw content-item rows to plan from.
type CatalogSource interface {
	Rows(ctx context.Context) ([]domain.ItemRow, error)
}

// HistoryLedger records deliveries and answers eligibility queries.
type HistoryLedger interface {
	LastSentDate(ctx context.Context, itemID int) (*time.Time, error)
	TodaySentIDs(ctx context.Context, today time.Time) ([]int, error)
	LogSent(ctx context.Context, rec domain.SendRecord) error
	Stats(ctx context.Context, itemID int) (domain.SendStats, error)
}

// Notifier delivers finalized content to the outbound channels.
type Notifier interface {
	PublishPost(ctx context.Context, text string) error
	PublishDocument(ctx context.Context, path, caption string) error
}

// PlanExporter renders a finished plan into a presentation document.
type PlanExporter interface {
	Render(plan domain.Plan, outputPath string) error
}

// Scheduler fires jobs at the configured posting times.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
