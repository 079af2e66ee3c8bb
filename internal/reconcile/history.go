package reconcile

import (
	"github.com/google/uuid"

	"github.com/tiltakhub/participant-api/internal/models"
)

// ArrangerNameLookup resolves an arranger organization id to its display
// name. The second return is false when the arranger is unknown.
type ArrangerNameLookup func(arrangerID uuid.UUID) (string, bool)

// ProjectHistory converts raw history events into presentation entries,
// resolving the acting arranger's display name per event. The projector is
// order-preserving: entries come out in the order the events came in, and
// callers sort beforehand as the presentation requires. An unknown arranger
// yields an empty display name rather than an error.
func ProjectHistory(events []models.RawHistoryEvent, lookup ArrangerNameLookup) []models.HistoryEntry {
	entries := make([]models.HistoryEntry, 0, len(events))
	for _, ev := range events {
		var name string
		if lookup != nil {
			if n, ok := lookup(ev.ArrangerID); ok {
				name = n
			}
		}
		entries = append(entries, models.HistoryEntry{
			ID:           ev.ID,
			Type:         ev.Type,
			CreatedAt:    ev.CreatedAt,
			ArrangerName: name,
			Change:       ev.Change,
			Assessment:   ev.Assessment,
		})
	}
	return entries
}
