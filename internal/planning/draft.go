package planning

import (
	"sort"
	"time"

	"grantia/internal/models"
)

// Entry is one flattened allocation cell ready to persist.
type Entry struct {
	UserID        string    `json:"user_id"`
	ActivityID    string    `json:"activity_id"`
	WeekStartDate time.Time `json:"week_start_date"`
	Hours         float64   `json:"hours"`
}

// Draft is an editable copy of a board's current-project cells. A UI
// mutates the draft and commits it in a single batch; the board itself is
// never modified.
type Draft struct {
	cells map[CellKey]float64
}

// NewDraft seeds a draft from the board's current-project cells.
func NewDraft(b Board) *Draft {
	cells := make(map[CellKey]float64, len(b.Cells))
	for k, v := range b.Cells {
		cells[k] = v
	}
	return &Draft{cells: cells}
}

// Set records hours for a cell, replacing any previous value.
func (d *Draft) Set(key CellKey, hours float64) {
	d.cells[key] = hours
}

// Remove deletes a cell from the draft.
func (d *Draft) Remove(key CellKey) {
	delete(d.cells, key)
}

// Hours returns the hours currently drafted for a cell.
func (d *Draft) Hours(key CellKey) float64 {
	return d.cells[key]
}

// Entries flattens the draft back into persistable records. Cells with an
// empty activity id or an unparseable week key are dropped rather than
// persisted. Output order is deterministic.
func (d *Draft) Entries() []Entry {
	entries := make([]Entry, 0, len(d.cells))
	for key, hours := range d.cells {
		if key.ActivityID == "" {
			continue
		}
		week, err := ParseWeekKey(key.WeekStart)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			UserID:        key.UserID,
			ActivityID:    key.ActivityID,
			WeekStartDate: week,
			Hours:         hours,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UserID != entries[j].UserID {
			return entries[i].UserID < entries[j].UserID
		}
		if entries[i].ActivityID != entries[j].ActivityID {
			return entries[i].ActivityID < entries[j].ActivityID
		}
		return entries[i].WeekStartDate.Before(entries[j].WeekStartDate)
	})
	return entries
}

// Records converts flattened entries into allocation rows for the given
// project, ready for the natural-key upsert.
func Records(projectID string, entries []Entry) []models.Allocation {
	records := make([]models.Allocation, 0, len(entries))
	for _, e := range entries {
		if e.ActivityID == "" {
			continue
		}
		records = append(records, models.Allocation{
			UserID:        e.UserID,
			ActivityID:    e.ActivityID,
			ProjectID:     projectID,
			WeekStartDate: e.WeekStartDate,
			Hours:         e.Hours,
		})
	}
	return records
}
