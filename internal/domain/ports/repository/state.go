package repository

import (
	"context"
)

// ConversationState holds the user's progress in any multi-step conversation.
type ConversationState struct {
	Mode string            `json:"mode"` // e.g., "text_to_vcf", "rename_contacts"
	Step string            `json:"step"` // e.g., "awaiting_file_name", "awaiting_files"
	Data map[string]string `json:"data"` // collected answers such as file_name or contacts_per_file
}

// Get returns a collected value, or "" when missing.
func (s *ConversationState) Get(key string) string {
	if s == nil || s.Data == nil {
		return ""
	}
	return s.Data[key]
}

// Set stores a collected value, allocating Data on first use.
func (s *ConversationState) Set(key, value string) {
	if s.Data == nil {
		s.Data = make(map[string]string)
	}
	s.Data[key] = value
}

// StateRepository is the port for managing any user's conversational state.
// GetState returns (nil, nil) when the user has no state.
type StateRepository interface {
	SetState(ctx context.Context, tgID int64, state *ConversationState) error
	GetState(ctx context.Context, tgID int64) (*ConversationState, error)
	ClearState(ctx context.Context, tgID int64) error
}
