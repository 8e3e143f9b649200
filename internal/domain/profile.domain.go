package domain

import "time"

// Profile is the application-level member record, keyed by the auth subject id.
// It exists iff the user completed phone verification and profile creation.
// IsVerified reflects the approved-members registry match at creation time and
// is not re-checked afterwards (admin escalation happens outside this core).
type Profile struct {
	ID         string    `json:"id"`
	Phone      string    `json:"phone"`
	FullName   string    `json:"full_name"`
	City       string    `json:"city"`
	Occupation *string   `json:"occupation,omitempty"`
	PhotoURL   *string   `json:"photo_url,omitempty"`
	Email      *string   `json:"email,omitempty"`
	GoogleID   *string   `json:"google_id,omitempty"`
	IsVerified bool      `json:"is_verified"`
	IsAdmin    bool      `json:"is_admin"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProfileInput carries the fields a user submits when creating or updating
// their profile. Unset optionals persist as NULL.
type ProfileInput struct {
	Phone      string  `json:"phone"`
	FullName   string  `json:"full_name"`
	City       string  `json:"city"`
	Occupation *string `json:"occupation,omitempty"`
	PhotoURL   *string `json:"photo_url,omitempty"`
	Email      *string `json:"email,omitempty"`
	GoogleID   *string `json:"google_id,omitempty"`
	IsVerified bool    `json:"is_verified"`
}

// ApprovedMember is a row of the pre-approved members registry.
type ApprovedMember struct {
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
	City     string `json:"city"`
}
