package services

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports malformed or missing input fields. Caller's fault,
// nothing was written.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Fields, ", ")
}

// NotFoundError reports a missing table or reservation.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// CapacityError reports a party size above the table's maximum.
type CapacityError struct {
	TableID     string
	PartySize   int
	CapacityMax int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("party size %d exceeds table capacity %d", e.PartySize, e.CapacityMax)
}

// ConflictError reports an overlapping active reservation on the same table.
// Start/End describe the conflicting interval so callers can render it.
type ConflictError struct {
	TableID string
	Start   time.Time
	End     time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot unavailable on table %s: already reserved %s - %s",
		e.TableID, e.Start.Format("2006-01-02 15:04"), e.End.Format("15:04"))
}
