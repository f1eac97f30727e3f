package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/ecotrack/wastage-api/models"
)

var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when registering an email that is taken.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrInvalidToken is returned for unknown or expired reset tokens.
	ErrInvalidToken = errors.New("reset token is invalid or has expired")
)

// Store is the state-management layer behind the request handlers. A single
// instance is constructed at process start and injected into the handlers.
//
// Waste mutations and their audit entry are atomic: either the record
// mutation and the log append both happen, or neither does.
type Store interface {
	CreateUser(u *models.User) error
	UserByEmail(email string) (*models.User, error)
	UserByID(id int) (*models.User, error)
	UpdateProfile(id int, upd models.ProfileUpdate) (*models.User, error)

	SaveResetToken(t models.ResetToken) error
	ResetPassword(token, passwordHash string, now time.Time) error

	WastesByUser(userID int) ([]models.WasteRecord, error)
	CreateWaste(w *models.WasteRecord) error
	UpdateWaste(id int, upd models.WasteUpdate) (*models.WasteRecord, error)
	DeleteWaste(id int) error

	AppendLog(e *models.LogEntry) error
	LogsByUser(userID int) ([]models.LogEntry, error)
}

// Audit descriptions are shared by every Store implementation so the log
// reads the same regardless of the backing state.

func wasteAddedDescription(w models.WasteRecord) string {
	return fmt.Sprintf("Added %g %s of %s.", w.Quantity, w.Unit, w.Type)
}

func wasteUpdatedDescription(original models.WasteRecord) string {
	return fmt.Sprintf("Updated waste record for %s.", original.Type)
}

func wasteDeletedDescription(w models.WasteRecord) string {
	return fmt.Sprintf("Deleted %g %s of %s.", w.Quantity, w.Unit, w.Type)
}

func applyWasteUpdate(w *models.WasteRecord, upd models.WasteUpdate) {
	if upd.Type != nil {
		w.Type = *upd.Type
	}
	if upd.Quantity != nil {
		w.Quantity = *upd.Quantity
	}
	if upd.Unit != nil {
		w.Unit = *upd.Unit
	}
	if upd.Category != nil {
		w.Category = *upd.Category
	}
	if upd.Status != nil {
		w.Status = *upd.Status
	}
	if upd.Location != nil {
		w.Location = *upd.Location
	}
	if upd.NotesSet {
		w.Notes = upd.Notes
	}
}
