package models

import (
	"encoding/json"
	"time"
)

// WasteStatus enumerates what happened to a waste record.
type WasteStatus string

const (
	StatusRecycled WasteStatus = "recycled"
	StatusDisposed WasteStatus = "disposed"
	StatusReused   WasteStatus = "reused"
)

// Valid reports whether s is one of the known statuses.
func (s WasteStatus) Valid() bool {
	switch s {
	case StatusRecycled, StatusDisposed, StatusReused:
		return true
	}
	return false
}

// WasteRecord represents one logged waste disposal.
type WasteRecord struct {
	ID        int         `json:"id" db:"id"`
	Type      string      `json:"type" db:"type"`
	Quantity  float64     `json:"quantity" db:"quantity"`
	Unit      string      `json:"unit" db:"unit"`
	Category  string      `json:"category" db:"category"`
	Status    WasteStatus `json:"status" db:"status"`
	Location  string      `json:"location" db:"location"`
	Notes     *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UserID    int         `json:"user_id" db:"user_id"`
}

// WasteUpdate is a presence-aware partial update of a waste record. Only the
// whitelisted mutable fields can be changed; id, user_id and created_at are
// never altered by a merge.
type WasteUpdate struct {
	Type     *string
	Quantity *float64
	Unit     *string
	Category *string
	Status   *WasteStatus
	Location *string
	Notes    *string
	NotesSet bool
}

// UnmarshalJSON decodes via a raw map so that notes can be explicitly
// cleared with null, distinct from being left out of the body.
func (u *WasteUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["type"]; ok {
		if err := json.Unmarshal(v, &u.Type); err != nil {
			return err
		}
	}
	if v, ok := raw["quantity"]; ok {
		if err := json.Unmarshal(v, &u.Quantity); err != nil {
			return err
		}
	}
	if v, ok := raw["unit"]; ok {
		if err := json.Unmarshal(v, &u.Unit); err != nil {
			return err
		}
	}
	if v, ok := raw["category"]; ok {
		if err := json.Unmarshal(v, &u.Category); err != nil {
			return err
		}
	}
	if v, ok := raw["status"]; ok {
		if err := json.Unmarshal(v, &u.Status); err != nil {
			return err
		}
	}
	if v, ok := raw["location"]; ok {
		if err := json.Unmarshal(v, &u.Location); err != nil {
			return err
		}
	}
	if v, ok := raw["notes"]; ok {
		u.NotesSet = true
		if err := json.Unmarshal(v, &u.Notes); err != nil {
			return err
		}
	}

	return nil
}
