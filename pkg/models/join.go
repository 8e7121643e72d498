package models

import "time"

// JoinRecord marks a user's participation in an event. The (UserID, EventID)
// pair is unique and append-only: joins are never updated, and leaving is not
// part of the platform.
type JoinRecord struct {
	UserID   string    `json:"userId"`
	EventID  string    `json:"eventId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// JoinEventRequest is the request body for joining an event.
type JoinEventRequest struct {
	EventID string `json:"eventId" binding:"required"`
}
