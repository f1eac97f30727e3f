package models

import "time"

// LogAction enumerates the audited actions.
type LogAction string

const (
	ActionWasteAdded   LogAction = "WASTE_ADDED"
	ActionWasteUpdated LogAction = "WASTE_UPDATED"
	ActionWasteDeleted LogAction = "WASTE_DELETED"
	ActionUserLogin    LogAction = "USER_LOGIN"
)

// LogEntry is one immutable audit record. Entries are append-only and are
// never updated or deleted.
type LogEntry struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	Action      LogAction `json:"action" db:"action"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
