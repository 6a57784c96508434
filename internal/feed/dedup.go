package feed

import (
	"sort"
	"vinolog/backend/internal/models"
)

// Deduplicate collapses rows that describe the same logical tasting event into one
// row each, sorted created_at descending.
//
// The logical-event key is root_entry_id when present, otherwise the row's own id.
// Among rows sharing a key, the canonical root (nil root_entry_id) wins over a
// shared copy; when both or neither are canonical, the first row encountered in
// the input wins. Copies are created near-simultaneously with their root, so a
// timestamp comparison would be an arbitrary tie-break anyway.
func Deduplicate(rows []models.Entry) []models.Entry {
	byKey := make(map[uint]int, len(rows))
	out := make([]models.Entry, 0, len(rows))

	for _, row := range rows {
		key := row.ID
		if row.RootEntryID != nil {
			key = *row.RootEntryID
		}
		i, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, row)
			continue
		}
		if out[i].RootEntryID != nil && row.RootEntryID == nil {
			out[i] = row
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
