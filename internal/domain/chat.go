package domain

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one immutable turn of a sommelier conversation. The
// transcript is append-only and lives in session memory only.
type ChatMessage struct {
	Role      Role   `json:"role"      example:"user"`
	Text      string `json:"text"      example:"What goes with lamb?"`
	Timestamp int64  `json:"timestamp" example:"1739000000000"`
}
