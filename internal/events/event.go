package events

import (
	"encoding/json"
	"time"
)

// Event types consumed by the accounting sync worker.
const (
	TypeExpenseStatusChanged = "expense.status_changed"
	TypeExpensePaymentMoved  = "expense.payment_moved"
	TypeTimesheetApproved    = "timesheet.approved"
	TypeTimesheetRejected    = "timesheet.rejected"
)

// Event is a lightweight notification: it carries ids and the new state,
// not the full record. Consumers fetch whatever else they need.
type Event struct {
	Type       string    `json:"type"`
	ResourceID string    `json:"resource_id"`
	ProjectID  string    `json:"project_id,omitempty"`
	ActorID    string    `json:"actor_id"`
	NewState   string    `json:"new_state,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType, resourceID, projectID, actorID, newState string) Event {
	return Event{
		Type:       eventType,
		ResourceID: resourceID,
		ProjectID:  projectID,
		ActorID:    actorID,
		NewState:   newState,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an event from JSON bytes.
func FromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}
