package models

import "time"

// MaxSessionMessages caps the embedded conversation history. Appending
// beyond the cap silently evicts the oldest entries (a FIFO window, not an
// error).
const MaxSessionMessages = 99

// ChatMessage is one entry of a session's embedded conversation history.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	// Citations lists document chunks the (external) generation step
	// grounded the reply on.
	Citations []string `json:"citations,omitempty"`
}

// ChatSession is the chat-session-family entity. Its partition key is
// /tenantId/userId/sessionId.
type ChatSession struct {
	Entity

	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	ProjectID string `json:"projectId,omitempty"`
	Title     string `json:"title,omitempty"`

	// MessageCount always equals len(Messages).
	MessageCount  int           `json:"messageCount"`
	LastMessageAt *time.Time    `json:"lastMessageAt,omitempty"`
	Messages      []ChatMessage `json:"messages"`
}

// CreateSessionRequest contains the caller-supplied fields for a new chat
// session, created on the user's first message.
type CreateSessionRequest struct {
	TenantID  string `json:"tenantId"`
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	ProjectID string `json:"projectId,omitempty"`
	Title     string `json:"title,omitempty"`
}

// AppendMessageRequest appends one message to a session's history.
type AppendMessageRequest struct {
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	Citations []string `json:"citations,omitempty"`
}
