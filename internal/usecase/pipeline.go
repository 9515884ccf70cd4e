package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ContentPlanner/internal/catalog"
	"ContentPlanner/internal/domain"
	"ContentPlanner/internal/planner"
	"ContentPlanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source    ports.CatalogSource
	Ledger    ports.HistoryLedger
	Engine    *planner.Engine
	Selector  *planner.Selector
	Exporter  ports.PlanExporter
	Notifier  ports.Notifier
	Params    planner.Params
	ExportDir string
	Logger    *slog.Logger
}

// Pipeline implements the two recurring workflows: building and publishing
// the weekly calendar, and sending the post due at a posting time.
type Pipeline struct {
	source    ports.CatalogSource
	ledger    ports.HistoryLedger
	engine    *planner.Engine
	selector  *planner.Selector
	exporter  ports.PlanExporter
	notifier  ports.Notifier
	params    planner.Params
	exportDir string
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		source:    deps.Source,
		ledger:    deps.Ledger,
		engine:    deps.Engine,
		selector:  deps.Selector,
		exporter:  deps.Exporter,
		notifier:  deps.Notifier,
		params:    deps.Params,
		exportDir: deps.ExportDir,
		logger:    logger,
	}
}

// PlanWeek builds a fresh plan starting at the given day, renders the
// calendar workbook, and publishes it to the channels.
func (p *Pipeline) PlanWeek(ctx context.Context, day time.Time) (domain.Plan, error) {
	if p.engine == nil {
		return domain.Plan{}, nil
	}

	params := p.params
	params.StartDate = day
	plan, err := p.engine.BuildPlan(ctx, params)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("build plan: %w", err)
	}

	if p.exporter == nil {
		return plan, nil
	}

	if err := os.MkdirAll(p.exportDir, 0o755); err != nil {
		return plan, fmt.Errorf("create export dir: %w", err)
	}
	outputPath := filepath.Join(p.exportDir,
		fmt.Sprintf("calendar_%s.xlsx", day.Format("2006_01_02")))
	if err := p.exporter.Render(plan, outputPath); err != nil {
		return plan, fmt.Errorf("render calendar: %w", err)
	}
	p.logger.Info("calendar exported", "path", outputPath, "run_id", plan.RunID)

	if p.notifier != nil {
		caption := fmt.Sprintf("Communications calendar from %s", day.Format("02.01.2006"))
		if err := p.notifier.PublishDocument(ctx, outputPath, caption); err != nil {
			return plan, fmt.Errorf("publish calendar: %w", err)
		}
	}

	return plan, nil
}

// SendDue picks the item due right now, delivers it, and records the
// outcome in the ledger. A day with nothing due is not an error.
func (p *Pipeline) SendDue(ctx context.Context, now time.Time) error {
	if p.source == nil || p.selector == nil || p.notifier == nil {
		return nil
	}

	rows, err := p.source.Rows(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	cat, err := catalog.Normalize(rows)
	if err != nil {
		return fmt.Errorf("normalize catalog: %w", err)
	}

	item, err := p.selector.PickDue(ctx, cat.Items, now)
	if errors.Is(err, planner.ErrNothingDue) {
		p.logger.Info("nothing due for this slot", "at", now.Format("2006-01-02 15:04"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("select item: %w", err)
	}

	sendErr := p.notifier.PublishPost(ctx, formatPost(item))

	if p.ledger != nil {
		rec := domain.SendRecord{
			ItemID:  item.ID,
			Title:   item.Title,
			SentAt:  now,
			Success: sendErr == nil,
		}
		if sendErr != nil {
			rec.ErrorMsg = sendErr.Error()
		}
		if logErr := p.ledger.LogSent(ctx, rec); logErr != nil {
			return fmt.Errorf("log send: %w", logErr)
		}
		if stats, statsErr := p.ledger.Stats(ctx, item.ID); statsErr == nil {
			p.logger.Debug("item history",
				"item", item.Title, "total_sent", stats.TotalSent, "errors", stats.Errors)
		}
	}

	if sendErr != nil {
		return fmt.Errorf("publish item %d: %w", item.ID, sendErr)
	}
	p.logger.Info("item published", "item", item.Title, "at", now.Format("2006-01-02 15:04"))
	return nil
}

// formatPost renders the outbound HTML message body. Item text is already
// HTML-formatted in the catalog and passes through unchanged.
func formatPost(item domain.ContentItem) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(item.Title)
	b.WriteString("</b>")
	if item.Text != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Text)
	}
	if item.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Link)
	}
	return b.String()
}
