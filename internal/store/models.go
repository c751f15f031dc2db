package store

import "time"

// RegistrationStatus is the lifecycle state of a Registration row.
// Waitlist and Pending are reserved: the schema carries them but no
// engine operation transitions into them yet.
type RegistrationStatus string

const (
	StatusConfirmed RegistrationStatus = "confirmed"
	StatusCancelled RegistrationStatus = "cancelled"
	StatusWaitlist  RegistrationStatus = "waitlist"
	StatusPending   RegistrationStatus = "pending"
)

// User mirrors the users table.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event mirrors the events table.
type Event struct {
	ID                   int64
	Title                string
	Description          *string
	DateTime             time.Time
	Location             *string
	Capacity             int
	CurrentRegistrations int
	CreatedBy            int64
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// AvailableSpots returns the number of confirmed-registration slots
// still open.
func (e Event) AvailableSpots() int { return e.Capacity - e.CurrentRegistrations }

// IsFull reports whether the event has no remaining capacity.
func (e Event) IsFull() bool { return e.CurrentRegistrations >= e.Capacity }

// Registration mirrors the registrations table.
type Registration struct {
	ID           int64
	UserID       int64
	EventID      int64
	RegisteredAt time.Time
	Status       RegistrationStatus
}
