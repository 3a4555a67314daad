// Package celebrate contains the trigger logic of the celebrator: the
// keyword cooldown tracker, the viewer milestone tracker, and the Engine
// that turns inbound chat/viewer events into celebration requests fanned
// out to the overlay, the audio player, websocket subscribers, and the
// optional history store.
package celebrate

import "time"

// EventType classifies what caused a celebration.
type EventType string

const (
	EventKeyword         EventType = "keyword"
	EventViewerMilestone EventType = "viewer_milestone"
	EventManual          EventType = "manual"
)

// ChatMessage is an inbound chat line from the chat collaborator.
type ChatMessage struct {
	User      string
	Text      string
	Timestamp time.Time
}

// Celebration is an outbound celebration request.
type Celebration struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	EventType EventType `json:"event_type"`
	At        time.Time `json:"at"`
}
