// Package session tracks per-channel JPIP session state: identity,
// activity, and the client/precinct caches a session owns (spec.md §3
// "Session").
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cocosip/jpeg2000-jpip/internal/errs"
	"github.com/cocosip/jpeg2000-jpip/jpip/cache"
)

// Session is one JPIP client session.
type Session struct {
	ID            string
	ChannelID     string
	Target        string
	Active        bool
	LastActivity  time.Time
	ClientCache   *cache.ClientCache
	PrecinctCache *cache.PrecinctCache
	Metadata      map[string]string
}

// Registry maps channel IDs to sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create allocates a new session bound to target, assigns an opaque
// unique channel ID, and registers it (spec.md §4.16 step 1).
func (r *Registry) Create(target string) (*Session, error) {
	channelID := uuid.NewString()
	s := &Session{
		ID:            channelID,
		ChannelID:     channelID,
		Target:        target,
		Active:        true,
		LastActivity:  time.Now(),
		ClientCache: cache.NewClientCache(
			cache.WithDedup(true),
			cache.WithCompression(cache.DefaultCompressionThreshold, cache.ZstdCompress, cache.ZstdDecompress),
		),
		PrecinctCache: cache.NewPrecinctCache(),
		Metadata:      make(map[string]string),
	}
	r.mu.Lock()
	r.sessions[channelID] = s
	r.mu.Unlock()
	return s, nil
}

// Resolve looks up a session by channel ID (spec.md §4.16 step 2).
func (r *Registry) Resolve(channelID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[channelID]
	if !ok {
		return nil, errs.NewJPIP(errs.ChannelIDUnknown, "", channelID, errUnknownChannel)
	}
	if !s.Active {
		return nil, errs.NewJPIP(errs.SessionClosed, s.ID, channelID, errSessionClosed)
	}
	s.LastActivity = time.Now()
	return s, nil
}

// Close deactivates and flushes a session's caches.
func (r *Registry) Close(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[channelID]
	if !ok {
		return
	}
	s.Active = false
	s.ClientCache.Clear()
	s.PrecinctCache.Clear()
	delete(r.sessions, channelID)
}

// Len returns the number of currently registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
