// Package entity defines the domain models for the medicine feature.
package entity

import "time"

// IntakeEvent is one entry of a medicine's intake log.
type IntakeEvent struct {
	Date  time.Time
	Taken bool
}

// Medicine is a medicine record owned by exactly one user.
// OwnerID and ID never change after creation; IntakeLog is append-only
// and kept in insertion order.
type Medicine struct {
	ID         string
	OwnerID    string
	Name       string
	Dosage     string
	Frequency  string
	StartDate  *time.Time
	EndDate    *time.Time
	ExpiryDate time.Time
	Quantity   int
	Notes      string
	IntakeLog  []IntakeEvent
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
