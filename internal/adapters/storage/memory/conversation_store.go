package memory

import (
	"context"
	"sync"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

// ConversationStore is an in-memory domain.ConversationStore.
// It is NOT persistent and is only suitable for development / local mode.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[domain.SessionKey]*domain.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[domain.SessionKey]*domain.Conversation),
	}
}

func (s *ConversationStore) GetConversation(_ context.Context, key domain.SessionKey) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return cloneConversation(conv), nil
}

func (s *ConversationStore) PutConversation(_ context.Context, conv *domain.Conversation) error {
	if conv == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[conv.Key] = cloneConversation(conv)
	return nil
}

// cloneConversation keeps callers from mutating stored history.
func cloneConversation(c *domain.Conversation) *domain.Conversation {
	out := *c
	out.State = c.State.Clone()
	if c.EmergencyContact != nil {
		ec := *c.EmergencyContact
		out.EmergencyContact = &ec
	}
	return &out
}
