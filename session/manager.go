package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/room4-2/TableTalk/config"
	"github.com/room4-2/TableTalk/dialogue"
	"github.com/room4-2/TableTalk/respond"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// ErrTooManySessions is returned when the session cap is reached.
var ErrTooManySessions = errors.New("maximum sessions reached")

// ErrUpstream wraps failures of the classification or text-generation
// services. A turn that fails this way commits nothing.
var ErrUpstream = errors.New("upstream service unavailable")

// entry pairs one session's record with its own mutex. A session is the
// unit of mutual exclusion: turns for the same id are serialized on
// entry.mu while different sessions proceed in parallel.
type entry struct {
	mu           sync.Mutex
	rec          *dialogue.Record
	createdAt    time.Time
	lastActivity time.Time
}

// TurnResult is what the transport layer needs back: rendered prose plus
// the structured decision for observability.
type TurnResult struct {
	SessionID string
	Text      string
	Decision  dialogue.Decision
}

// Manager owns all dialogue sessions. Records are created lazily on the
// first utterance for an unknown id and optionally mirrored to Redis so a
// restarted process can pick sessions back up.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	redis    *redis.Client
	config   *config.Config
	engine   *dialogue.Engine
	renderer respond.Renderer
}

// NewManager creates a session manager with an optional Redis connection.
// Redis being down is not fatal; the manager degrades to memory only.
func NewManager(cfg *config.Config, engine *dialogue.Engine, renderer respond.Renderer) (*Manager, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient = nil
	}

	return &Manager{
		sessions: make(map[string]*entry),
		redis:    redisClient,
		config:   cfg,
		engine:   engine,
		renderer: renderer,
	}, nil
}

// Turn processes exactly one utterance for a session. The engine runs on
// a clone of the record and the clone is committed only after both the
// step and the rendering succeed, so an upstream failure leaves the
// session state exactly as it was.
func (m *Manager) Turn(ctx context.Context, sessionID, utterance string) (TurnResult, error) {
	e, err := m.getOrCreate(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	clone := e.rec.Clone()
	dec, err := m.engine.Step(ctx, clone, utterance)
	if err != nil {
		return TurnResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	text, err := m.renderer.Render(ctx, dec)
	if err != nil {
		return TurnResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	e.rec = clone
	e.lastActivity = time.Now()
	m.persist(ctx, sessionID, e)

	return TurnResult{SessionID: sessionID, Text: text, Decision: dec}, nil
}

// getOrCreate returns the live entry for an id, restoring it from Redis
// if a previous process persisted it, or creating a fresh record.
func (m *Manager) getOrCreate(ctx context.Context, sessionID string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return e, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[sessionID]; ok {
		return e, nil
	}
	if len(m.sessions) >= m.config.MaxSessions {
		return nil, ErrTooManySessions
	}

	rec := m.loadRecord(ctx, sessionID)
	if rec == nil {
		rec = dialogue.NewRecord()
	}
	e = &entry{rec: rec, createdAt: time.Now(), lastActivity: time.Now()}
	m.sessions[sessionID] = e
	return e, nil
}

// Snapshot returns a deep copy of a session's record for observability
// endpoints; callers cannot mutate live state through it.
func (m *Manager) Snapshot(sessionID string) (*dialogue.Record, bool) {
	m.mu.RLock()
	e, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Clone(), true
}

// Delete removes a session from memory and Redis.
func (m *Manager) Delete(ctx context.Context, sessionID string) bool {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if m.redis != nil {
		m.redis.Del(ctx, "session:"+sessionID)
		m.redis.SRem(ctx, "active_sessions", sessionID)
	}
	return ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// persist mirrors the record to Redis. The full record round-trips
// losslessly through the "record" field; the extra fields exist for
// operators poking at Redis directly.
func (m *Manager) persist(ctx context.Context, sessionID string, e *entry) {
	if m.redis == nil {
		return
	}
	data, err := encodeRecord(e.rec)
	if err != nil {
		return
	}
	m.redis.HSet(ctx, "session:"+sessionID, map[string]interface{}{
		"record":        string(data),
		"stage":         string(e.rec.Stage),
		"created_at":    e.createdAt.Format(time.RFC3339),
		"last_activity": e.lastActivity.Format(time.RFC3339),
	})
	m.redis.SAdd(ctx, "active_sessions", sessionID)
	m.redis.Expire(ctx, "session:"+sessionID, m.config.SessionTimeout)
}

func (m *Manager) loadRecord(ctx context.Context, sessionID string) *dialogue.Record {
	if m.redis == nil {
		return nil
	}
	data, err := m.redis.HGet(ctx, "session:"+sessionID, "record").Result()
	if err != nil {
		return nil
	}
	rec, err := decodeRecord([]byte(data))
	if err != nil {
		return nil
	}
	return rec
}

// CleanupInactiveSessions evicts sessions idle past the timeout.
func (m *Manager) CleanupInactiveSessions(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, e := range m.sessions {
		// A session with a turn in flight holds its own mutex; it is not
		// inactive, and evicting it would orphan that turn's commit.
		if !e.mu.TryLock() {
			continue
		}
		expired := now.Sub(e.lastActivity) > m.config.SessionTimeout
		e.mu.Unlock()
		if !expired {
			continue
		}

		delete(m.sessions, id)

		if m.redis != nil {
			m.redis.Del(ctx, "session:"+id)
			m.redis.SRem(ctx, "active_sessions", id)
		}
	}
}

// StartCleanupRoutine runs periodic eviction until ctx is canceled.
func (m *Manager) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupInactiveSessions(ctx)
		}
	}
}

// Shutdown drops all sessions and closes the Redis connection.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]*entry)

	if m.redis != nil {
		m.redis.Close()
	}
}

func encodeRecord(rec *dialogue.Record) ([]byte, error) {
	return sonic.Marshal(rec)
}

func decodeRecord(data []byte) (*dialogue.Record, error) {
	var rec dialogue.Record
	if err := sonic.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
