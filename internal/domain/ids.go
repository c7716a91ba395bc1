// Package domain holds the identity types shared by windows, drags and transfers.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// WindowID uniquely identifies a live window within the process.
type WindowID string

// NewWindowID generates a new unique WindowID using UUID v4.
func NewWindowID() WindowID {
	return WindowID(uuid.New().String())
}

// String returns the string representation of the WindowID.
func (id WindowID) String() string {
	return string(id)
}

// Short returns the first 8 characters, used in labels and logs.
func (id WindowID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// RequestID correlates a transfer request with its response.
// Identifiers are single-use: a fresh one is generated for every attempt.
type RequestID string

// NewRequestID generates a new 128-bit random RequestID.
func NewRequestID() RequestID {
	return RequestID(uuid.New().String())
}

// String returns the string representation of the RequestID.
func (id RequestID) String() string {
	return string(id)
}

// IsValid returns true if the RequestID is a valid UUID.
func (id RequestID) IsValid() bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(string(id))
	return err == nil
}

// Point is a logical screen or element coordinate.
type Point struct {
	X float64
	Y float64
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.0f,%.0f)", p.X, p.Y)
}
