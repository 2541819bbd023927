package models

import "time"

// Chat roles, matching the chat-completion API wire values.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a chat session.
type ChatMessage struct {
	Role    string `json:"role" bson:"role"`
	Content string `json:"content" bson:"content"`
}

// ChatSession is the stored history of one conversation. History lives
// per session in MongoDB, never in process-wide state, so concurrent
// conversations stay isolated.
type ChatSession struct {
	ID        string        `json:"session_id" bson:"_id"`
	Messages  []ChatMessage `json:"messages" bson:"messages"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// IncidentContext is the JSON context the mobile app sends along with
// chat prompts, describing the incident under discussion.
type IncidentContext struct {
	TypeIncident  string `json:"type_incident"`
	Analysis      string `json:"analysis"`
	PisteSolution string `json:"piste_solution"`
}
