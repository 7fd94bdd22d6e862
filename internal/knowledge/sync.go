package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/services"
	"github.com/mailforge/mailforge-backend/internal/types"
)

// Syncer pulls an event's planning documents and refreshes the index.
type Syncer struct {
	log     *logger.Logger
	index   Index
	fetcher services.DocFetcher
}

func NewSyncer(index Index, fetcher services.DocFetcher, log *logger.Logger) *Syncer {
	return &Syncer{
		log:     log.With("service", "KnowledgeSyncer"),
		index:   index,
		fetcher: fetcher,
	}
}

type SyncResult struct {
	ProgramItems int `json:"program_items"`
	PainPoints   int `json:"pain_points"`
}

// SyncEvent refreshes program items and pain points from the event's
// linked documents. A missing doc id skips that corpus.
func (s *Syncer) SyncEvent(ctx context.Context, event *types.Event) (*SyncResult, error) {
	res := &SyncResult{}

	if event.ProgramDocID != "" {
		raw, err := s.fetcher.FetchSheet(ctx, event.ProgramDocID, "Program")
		if err != nil {
			return nil, fmt.Errorf("fetch program sheet: %w", err)
		}
		items := parseProgramRows(raw)
		n, err := s.index.IndexProgram(ctx, event.ID, items)
		if err != nil {
			return nil, err
		}
		res.ProgramItems = n
	}

	if event.PainDocID != "" {
		doc, err := s.fetcher.FetchSheet(ctx, event.PainDocID, "")
		if err != nil {
			return nil, fmt.Errorf("fetch pain point doc: %w", err)
		}
		n, err := s.index.IndexPainPoints(ctx, event.ID, doc)
		if err != nil {
			return nil, err
		}
		res.PainPoints = n
	}

	s.log.Info("Synced event knowledge", "event_id", event.ID, "program_items", res.ProgramItems, "pain_points", res.PainPoints)
	return res, nil
}

// parseProgramRows reads the tab-separated program sheet. Expected
// columns: title, speaker, time, track, abstract. A header row naming
// "title" in the first column is skipped.
func parseProgramRows(raw string) []ProgramItem {
	var items []ProgramItem
	for i, line := range strings.Split(raw, "\n") {
		cols := strings.Split(line, "\t")
		title := strings.TrimSpace(col(cols, 0))
		if title == "" {
			continue
		}
		if i == 0 && strings.EqualFold(title, "title") {
			continue
		}
		items = append(items, ProgramItem{
			Title:    title,
			Speaker:  strings.TrimSpace(col(cols, 1)),
			Time:     strings.TrimSpace(col(cols, 2)),
			Track:    strings.TrimSpace(col(cols, 3)),
			Abstract: strings.TrimSpace(col(cols, 4)),
		})
	}
	return items
}

func col(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}
