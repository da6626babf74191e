// Package store persists conversations, messages and saved charts.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/barasalah2/chartflow/engine"
)

// ErrNotFound is returned when a record does not exist or was deleted.
var ErrNotFound = errors.New("not found")

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Conversation groups messages and saved charts.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one chat turn. Assistant messages may carry suggested specs.
type Message struct {
	ID             string             `json:"id"`
	ConversationID string             `json:"conversation_id"`
	Role           Role               `json:"role"`
	Content        string             `json:"content"`
	Visualizations []engine.ChartSpec `json:"visualizations,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// SavedChart is a set of chart specs together with the data they render.
type SavedChart struct {
	ID             string             `json:"id"`
	ConversationID string             `json:"conversation_id"`
	Title          string             `json:"title"`
	Specs          []engine.ChartSpec `json:"specs"`
	Data           []map[string]any   `json:"data"`
	Metadata       map[string]any     `json:"metadata,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Store defines the persistence interface.
type Store interface {
	// CreateConversation starts a conversation. An empty title becomes "New conversation".
	CreateConversation(ctx context.Context, title string) (*Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	// ListConversations returns the most recently updated first. limit <= 0 means no limit.
	ListConversations(ctx context.Context, limit int) ([]Conversation, error)
	RenameConversation(ctx context.Context, id, title string) (*Conversation, error)
	// DeleteConversation soft-deletes a conversation together with its charts.
	DeleteConversation(ctx context.Context, id string) error

	// AddMessage appends a message and bumps the conversation's updated_at.
	AddMessage(ctx context.Context, m Message) (*Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)

	SaveChart(ctx context.Context, c SavedChart) (*SavedChart, error)
	GetChart(ctx context.Context, id string) (*SavedChart, error)
	ListCharts(ctx context.Context, conversationID string) ([]SavedChart, error)
	DeleteChart(ctx context.Context, id string) error

	Close() error
}

// DefaultTitle names conversations created without a title.
const DefaultTitle = "New conversation"
