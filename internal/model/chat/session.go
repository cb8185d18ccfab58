package chat

import "time"

// Session captures a transient conversation with a single mentor.
type Session struct {
	ID        string    `json:"id"`
	MentorID  string    `json:"mentorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Transcript is a read-only snapshot of session state for renderers.
type Transcript struct {
	SessionID string    `json:"sessionId"`
	MentorID  string    `json:"mentorId"`
	Messages  []Message `json:"messages"`
	Streaming bool      `json:"isStreaming"`
	Draft     string    `json:"draftInput"`
	History   []Turn    `json:"history"`
}
