package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// GenderEveryone in an interested-in set accepts any gender.
const GenderEveryone = "EVERYONE"

const (
	MinAgeDefault = 18
	MaxAgeDefault = 99
)

// Position is a WGS84 coordinate pair.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether both coordinates are finite and in range.
func (p Position) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Filter is a user's visibility preference. Two users only see each other
// on the radar when each filter accepts the other user.
type Filter struct {
	InterestedIn []string `json:"interestedIn"`
	MinAge       int      `json:"minAge"`
	MaxAge       int      `json:"maxAge"`
}

// ApplyDefaults fills unset fields: interested in everyone, age 18-99.
func (f *Filter) ApplyDefaults() {
	if len(f.InterestedIn) == 0 {
		f.InterestedIn = []string{GenderEveryone}
	}
	if f.MinAge <= 0 {
		f.MinAge = MinAgeDefault
	}
	if f.MaxAge <= 0 {
		f.MaxAge = MaxAgeDefault
	}
}

// Accepts reports whether a subject with the given gender and age passes
// this filter.
func (f Filter) Accepts(gender string, age int) bool {
	if age < f.MinAge || age > f.MaxAge {
		return false
	}
	for _, g := range f.InterestedIn {
		if g == GenderEveryone || g == gender {
			return true
		}
	}
	return false
}

// PresenceRecord is one active user on the radar. Records live in process
// memory only and expire when not refreshed within the configured TTL.
type PresenceRecord struct {
	UserID      uuid.UUID
	Position    Position
	SelfieRef   string
	DisplayName string
	Gender      string
	Age         int
	Filter      Filter
	LastSeenAt  time.Time
}

// Expired reports whether the record is past the TTL relative to now.
// This is the single liveness check; every read path goes through it.
func (r *PresenceRecord) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.LastSeenAt) > ttl
}
