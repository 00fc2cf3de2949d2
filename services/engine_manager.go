package services

import (
	"context"
	"sync"

	"calmquest-backend/storage"
)

// EngineManager hands out one ProgressionEngine per user session. Engines are
// created lazily and synced from remote before first use, so handlers can
// never mutate an unsynced aggregate. Explicit injection point for the
// gateway and cache; nothing reaches engines through globals.
type EngineManager struct {
	mu      sync.Mutex
	gateway storage.Gateway
	cache   *storage.LocalCache
	reward  RewardFormula
	engines map[string]*ProgressionEngine
}

func NewEngineManager(gateway storage.Gateway, cache *storage.LocalCache, reward RewardFormula) *EngineManager {
	return &EngineManager{
		gateway: gateway,
		cache:   cache,
		reward:  reward,
		engines: make(map[string]*ProgressionEngine),
	}
}

// Engine returns the session engine for userID, creating and syncing it on
// first use. A failed initial sync is not memoized; the next request retries.
func (m *EngineManager) Engine(ctx context.Context, userID string) (*ProgressionEngine, error) {
	m.mu.Lock()
	if engine, ok := m.engines[userID]; ok {
		m.mu.Unlock()
		return engine, nil
	}
	m.mu.Unlock()

	engine, err := NewProgressionEngine(userID, m.gateway, m.cache, m.reward)
	if err != nil {
		return nil, err
	}
	if _, err := engine.SyncFromRemote(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.engines[userID]; ok {
		// Lost the race to another request; use the one that won.
		return existing, nil
	}
	m.engines[userID] = engine
	return engine, nil
}

// Drop discards a user's session engine (logout, reset-and-resync).
func (m *EngineManager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.engines, userID)
}
