package services

import (
	"sync"

	"fitQuestAPI/internal/activity"
	"fitQuestAPI/internal/clock"
	"fitQuestAPI/internal/goalstore"
	"fitQuestAPI/internal/prefs"
	"fitQuestAPI/internal/progress"
)

// StoreFactory builds the durable key-value store for one user.
type StoreFactory func(clerkID string) prefs.Store

// SinkFactory builds the activity event sink for one user. May return nil
// when sync is disabled.
type SinkFactory func(clerkID string) activity.Sink

// UserSession bundles the per-user tracking engine: the goal store and the
// progress tracker share one prefs store and one serialization lock, which
// keeps the at-most-one-writer-per-user assumption intact across compound
// operations (mutate goal, then recompute score).
type UserSession struct {
	mu       sync.Mutex
	Goals    *goalstore.Store
	Progress *progress.Tracker
}

// Lock serializes a compound operation on this user's state.
func (s *UserSession) Lock()   { s.mu.Lock() }
func (s *UserSession) Unlock() { s.mu.Unlock() }

// SessionManager hands out one UserSession per user, creating it on first
// access.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*UserSession
	factory  StoreFactory
	clock    clock.Clock
	sinkFor  SinkFactory
}

func NewSessionManager(factory StoreFactory, clk clock.Clock, sinkFor SinkFactory) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*UserSession),
		factory:  factory,
		clock:    clk,
		sinkFor:  sinkFor,
	}
}

func (m *SessionManager) Session(clerkID string) *UserSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[clerkID]; ok {
		return s
	}
	store := m.factory(clerkID)
	var sink activity.Sink
	if m.sinkFor != nil {
		sink = m.sinkFor(clerkID)
	}
	s := &UserSession{
		Goals:    goalstore.NewStore(store, m.clock, sink),
		Progress: progress.NewTracker(store, m.clock),
	}
	m.sessions[clerkID] = s
	return s
}
