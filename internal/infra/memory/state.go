// Package memory holds single-process implementations of the repository
// ports, used when Redis or Postgres are not configured.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"aura-vcf-bot/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)

type StateRepo struct {
	mu     sync.RWMutex
	states map[int64][]byte
}

func NewStateRepo() *StateRepo {
	return &StateRepo{states: make(map[int64][]byte)}
}

// States are stored encoded so callers never share a Data map.
func (s *StateRepo) SetState(ctx context.Context, tgID int64, state *repository.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.states[tgID] = data
	s.mu.Unlock()
	return nil
}

func (s *StateRepo) GetState(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	s.mu.RLock()
	data, ok := s.states[tgID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var st repository.ConversationState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *StateRepo) ClearState(ctx context.Context, tgID int64) error {
	s.mu.Lock()
	delete(s.states, tgID)
	s.mu.Unlock()
	return nil
}
