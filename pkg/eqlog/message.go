package eqlog

import "github.com/eqlog/eqlog-go/pkg/eqlog/encounter"

// MessageType discriminates the streaming protocol messages.
type MessageType string

const (
	// MessageProgress reports line-cursor progress. Emitted at start, after
	// each encounter, and at end.
	MessageProgress MessageType = "progress"

	// MessageEncounter carries one finalized encounter, in order.
	MessageEncounter MessageType = "encounter"

	// MessageMetadata is emitted once after the whole input is consumed.
	MessageMetadata MessageType = "metadata"

	// MessageError reports a condition fatal to this parse. Encounters
	// already emitted remain valid and are not retracted.
	MessageError MessageType = "error"
)

// Progress is the line-cursor position within the input.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Metadata reports the resolved player name and the overall time bounds of
// the log. If the player name was never resolved, an error message is
// emitted instead and metadata is suppressed.
type Metadata struct {
	LoggedBy string `json:"loggedBy"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
}

// Message is one frame of the streaming protocol. Exactly one payload field
// is set, according to Type.
type Message struct {
	Type      MessageType          `json:"type"`
	Progress  *Progress            `json:"progress,omitempty"`
	Encounter *encounter.Encounter `json:"encounter,omitempty"`
	Metadata  *Metadata            `json:"metadata,omitempty"`
	Error     string               `json:"error,omitempty"`
}
