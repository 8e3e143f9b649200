package domain

import "time"

// Community content records. The screens submit these unchanged; the core only
// gates writes on the author's verification status.

type Event struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	EventDate      *time.Time `json:"event_date,omitempty"`
	Location       *string    `json:"location,omitempty"`
	ImageURL       *string    `json:"image_url,omitempty"`
	IsAnnouncement bool       `json:"is_announcement"`
	IsVisible      bool       `json:"is_visible"`
	Status         string     `json:"status"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     *string   `json:"company,omitempty"`
	City        *string   `json:"city,omitempty"`
	Description *string   `json:"description,omitempty"`
	ContactInfo *string   `json:"contact_info,omitempty"`
	Status      string    `json:"status"`
	PostedBy    string    `json:"posted_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type BloodDonor struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	BloodGroup  string    `json:"blood_group"`
	City        string    `json:"city"`
	Phone       string    `json:"phone"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

type Donation struct {
	ID        string    `json:"id"`
	DonorName string    `json:"donor_name"`
	Amount    float64   `json:"amount"`
	Purpose   *string   `json:"purpose,omitempty"`
	DonatedAt time.Time `json:"donated_at"`
}

type MatrimonialProfile struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	FullName  string     `json:"full_name"`
	Gender    string     `json:"gender"`
	City      *string    `json:"city,omitempty"`
	Gotra     *string    `json:"gotra,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	PhotoURL  *string    `json:"photo_url,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

type ContactRequest struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	RequesterID string    `json:"requester_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type PostHolder struct {
	ID           string  `json:"id"`
	UserID       *string `json:"user_id,omitempty"`
	FullName     string  `json:"full_name"`
	Position     string  `json:"position"`
	PhotoURL     *string `json:"photo_url,omitempty"`
	DisplayOrder int     `json:"display_order"`
}

// Filters used by list endpoints; zero values mean "no filter".

type MatrimonialFilter struct {
	Gender string
	City   string
	Gotra  string
}

type DonorFilter struct {
	BloodGroup string
	City       string
}

// EventKind selects between dated events and announcements.
type EventKind string

const (
	EventsAll           EventKind = "all"
	EventsOnly          EventKind = "events"
	EventsAnnouncements EventKind = "announcements"
)
