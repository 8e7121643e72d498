package models

import "time"

// EventType is the closed set of event categories the platform accepts.
type EventType string

const (
	EventCulturalParade      EventType = "Cultural Parade"
	EventStreetFestival      EventType = "Street Festival"
	EventHeritageFestival    EventType = "Heritage Festival"
	EventFilmSupport         EventType = "Film Support"
	EventMusicFestival       EventType = "Music Festival"
	EventNationalCelebration EventType = "National Celebration"
)

// EventTypes lists all valid event types in display order.
var EventTypes = []EventType{
	EventCulturalParade,
	EventStreetFestival,
	EventHeritageFestival,
	EventFilmSupport,
	EventMusicFestival,
	EventNationalCelebration,
}

// ValidEventType reports whether t is one of the known event types.
func ValidEventType(t EventType) bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EventRecord is an event as the platform API serves it. The id field is
// named _id on the wire.
type EventRecord struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	EventType   EventType `json:"eventType"`
	Thumbnail   string    `json:"thumbnail"`
	Date        time.Time `json:"date"`
	CreatorID   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// CreateEventRequest is the request body for creating an event.
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required" validate:"required"`
	Description string    `json:"description" binding:"required" validate:"required"`
	Location    string    `json:"location" binding:"required" validate:"required"`
	EventType   EventType `json:"eventType" binding:"required" validate:"required,eventtype"`
	Thumbnail   string    `json:"thumbnail" binding:"required,url" validate:"required,url"`
	Date        time.Time `json:"date" binding:"required" validate:"required"`
}

// UpdateEventRequest is the request body for patching an event. Zero-valued
// fields are left untouched by the server.
type UpdateEventRequest struct {
	Title       string    `json:"title,omitempty" validate:"omitempty"`
	Description string    `json:"description,omitempty" validate:"omitempty"`
	Location    string    `json:"location,omitempty" validate:"omitempty"`
	EventType   EventType `json:"eventType,omitempty" validate:"omitempty,eventtype"`
	Thumbnail   string    `json:"thumbnail,omitempty" validate:"omitempty,url"`
	Date        time.Time `json:"date,omitempty" validate:"omitempty"`
}
