package models

import "encoding/json"

// User represents an application user.
type User struct {
	ID                int     `json:"id" db:"id"`
	Username          string  `json:"username" db:"username"`
	Email             string  `json:"email" db:"email"`
	Password          string  `json:"-" db:"password"` // Exclude password hash from JSON responses
	MonthlyTarget     float64 `json:"monthly_target" db:"monthly_target"`
	ProfilePictureURL *string `json:"profile_picture_url" db:"profile_picture_url"`
}

// Credentials represents the data needed for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the data needed for registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is a presence-aware partial update of the two mutable user
// fields. A field left out of the JSON body is not touched; a field present
// with any value, null included, overwrites.
type ProfileUpdate struct {
	MonthlyTarget     float64
	MonthlyTargetSet  bool
	ProfilePictureURL *string
	ProfilePictureSet bool
}

// UnmarshalJSON decodes via a raw map so that an absent key and an explicit
// null can be told apart, which plain pointer fields cannot do.
func (u *ProfileUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["monthly_target"]; ok {
		var target *float64
		if err := json.Unmarshal(v, &target); err != nil {
			return err
		}
		u.MonthlyTargetSet = true
		if target != nil {
			u.MonthlyTarget = *target
		}
	}

	if v, ok := raw["profile_picture_url"]; ok {
		var url *string
		if err := json.Unmarshal(v, &url); err != nil {
			return err
		}
		u.ProfilePictureSet = true
		u.ProfilePictureURL = url
	}

	return nil
}
