// Package domain holds the core types of the host and guest matching service.
package domain

import "time"

// Record carries the identity and timestamps shared by persisted entities.
type Record struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// InitTimestamps sets CreatedAt and UpdatedAt to now.
func (r *Record) InitTimestamps(now time.Time) {
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Touch updates UpdatedAt.
func (r *Record) Touch(now time.Time) {
	r.UpdatedAt = now
}
