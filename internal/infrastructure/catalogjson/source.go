// Package catalogjson reads the content-item catalog from a JSON document.
package catalogjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"ContentPlanner/internal/domain"
	"ContentPlanner/internal/ports"
)

// Source loads catalog rows from a JSON file on each call, so catalog edits
// are picked up by the next planning run without a restart.
type Source struct {
	path   string
	logger *slog.Logger
}

var _ ports.CatalogSource = (*Source)(nil)

// New wires a file-backed catalog source.
func New(path string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Source{path: path, logger: logger}
}

// row mirrors one catalog document entry. PerWeek/PerMonth are pointers so
// absence is distinguishable from zero; AlternateRows accepts the legacy
// comma-separated string form.
type row struct {
	Title         string   `json:"title"`
	Text          string   `json:"text"`
	Link          string   `json:"link"`
	PerWeek       *float64 `json:"per_week"`
	PerMonth      *float64 `json:"per_month"`
	AlternateRows string   `json:"alternate_rows"`
	ConflictIDs   []int    `json:"do_not_schedule_same_day_with"`
	Photos        []string `json:"photos"`
	Videos        []string `json:"videos"`
}

// Rows parses the catalog file into raw item rows.
func (s *Source) Rows(ctx context.Context) ([]domain.ItemRow, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
	}

	var fileRows []row
	if err := json.Unmarshal(raw, &fileRows); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", s.path, err)
	}

	rows := make([]domain.ItemRow, 0, len(fileRows))
	for i, r := range fileRows {
		alternates, err := parseRowRefs(r.AlternateRows)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i+1, r.Title, err)
		}
		rows = append(rows, domain.ItemRow{
			Title:         r.Title,
			Text:          r.Text,
			Link:          r.Link,
			PerWeek:       r.PerWeek,
			PerMonth:      r.PerMonth,
			AlternateRows: alternates,
			ConflictIDs:   r.ConflictIDs,
			Photos:        r.Photos,
			Videos:        r.Videos,
		})
	}

	s.logger.Debug("catalog loaded", "path", s.path, "rows", len(rows))
	return rows, nil
}

// parseRowRefs splits a "3, 5" style reference list into row numbers.
func parseRowRefs(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var refs []int
	for _, part := range strings.Split(raw, ",") {
		ref, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("malformed alternation reference %q", part)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
