package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type inMemoryStore struct {
	mu      sync.RWMutex
	ledgers map[string]UserLedger
}

// NewInMemory creates a concurrency-safe in-memory ledger store useful for
// unit tests and dev mode without Postgres.
func NewInMemory() Store {
	return &inMemoryStore{ledgers: make(map[string]UserLedger)}
}

func (s *inMemoryStore) Load(_ context.Context, identity string) (UserLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.ledgers[identity]; ok {
		return l, nil
	}
	return UserLedger{Identity: identity}, nil
}

func (s *inMemoryStore) Save(_ context.Context, l UserLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.UpdatedAt = time.Now().UTC()
	s.ledgers[l.Identity] = l
	return nil
}

func (s *inMemoryStore) ApplyReward(_ context.Context, identity string, amount int) (UserLedger, error) {
	if amount < 0 {
		return UserLedger{}, fmt.Errorf("reward must be non-negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.ledgers[identity]
	l.Identity = identity
	l.Tokens += amount
	l.UpdatedAt = time.Now().UTC()
	s.ledgers[identity] = l
	return l, nil
}

func (s *inMemoryStore) ApplyMission(_ context.Context, identity string, reward int) (UserLedger, error) {
	if reward < 0 {
		return UserLedger{}, fmt.Errorf("reward must be non-negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.ledgers[identity]
	l.Identity = identity
	l.Missions++
	l.Tokens += reward
	l.UpdatedAt = time.Now().UTC()
	s.ledgers[identity] = l
	return l, nil
}

func (s *inMemoryStore) Redeem(_ context.Context, identity string, amount int) (UserLedger, error) {
	if amount <= 0 {
		return UserLedger{}, fmt.Errorf("amount must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.ledgers[identity]
	if l.Tokens < amount {
		return UserLedger{}, ErrInsufficientTokens
	}
	l.Identity = identity
	l.Tokens -= amount
	l.UpdatedAt = time.Now().UTC()
	s.ledgers[identity] = l
	return l, nil
}
