package reading

import (
	"context"
	"sort"
	"strings"
)

// Projector derives the display-oriented history list from the store. It is a
// pure read-side projection: deterministic given store contents, no caching
// of its own.
type Projector struct {
	store    Store
	titleLen int
}

func NewProjector(store Store, titleLen int) *Projector {
	if titleLen <= 0 {
		titleLen = 48
	}
	return &Projector{store: store, titleLen: titleLen}
}

// ListHistory maps every stored record to a HistoryEntry and sorts newest
// first. Ties break on id so the order is stable.
func (p *Projector) ListHistory(ctx context.Context) ([]HistoryEntry, error) {
	records, err := p.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, HistoryEntry{
			ID:        record.ID,
			Timestamp: record.Timestamp,
			Title:     historyTitle(record.Data.Script, p.titleLen),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// historyTitle takes the first non-empty line of the script, strips markdown
// heading markers, and truncates to maxLen runes with an ellipsis.
func historyTitle(script string, maxLen int) string {
	title := ""
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "# ")
		if line != "" {
			title = line
			break
		}
	}
	if title == "" {
		return "(untitled document)"
	}

	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}
	return string(runes[:maxLen]) + "…"
}
