package chat

import "time"

// Sender identifies who authored a transcript entry.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderMentor Sender = "mentor"
)

// Status tracks whether a message body may still grow.
type Status string

const (
	// StatusPending marks the open mentor message of an in-flight turn.
	StatusPending Status = "pending"
	StatusSettled Status = "settled"
	// StatusFailed is a settled message whose body was replaced by the fallback notice.
	StatusFailed Status = "failed"
)

// Settled reports whether the content is frozen.
func (s Status) Settled() bool {
	return s == StatusSettled || s == StatusFailed
}

// TimestampLayout is the display format of Message.Timestamp.
const TimestampLayout = "15:04"

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp string    `json:"timestamp"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
