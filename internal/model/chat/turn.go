package chat

// Role labels a history entry the way completion backends expect it.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one settled history record fed back to the backend as context.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
