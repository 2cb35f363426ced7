package session

import (
	"context"      // Context for Redis operations
	"crypto/rand"  // Secure session ID generation
	"encoding/hex" // Hex encoding of session IDs
	"time"         // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Session security constants
const (
	IDLength = 64            // 64 character session ID
	Timeout  = 3 * time.Hour // 3 hour sliding timeout
	keyspace = "session:"    // Redis key prefix for session payloads
)

// Flash is a one-shot user-facing status message shown on the next rendered page
type Flash struct {
	Kind    string `json:"kind"`    // "success" or "error"
	Message string `json:"message"` // Message text
}

// Session is the server-side state keyed by the client-held token
type Session struct {
	ID       string  `json:"-"`         // Session ID, lives in the signed cookie, not in the payload
	UserID   uint    `json:"user_id"`   // Authenticated user id, zero when anonymous
	ReturnTo string  `json:"return_to"` // URL to return to after login
	Flashes  []Flash `json:"flashes"`   // Pending one-shot messages
}

// LoggedIn reports whether the session carries an authenticated principal
func (s *Session) LoggedIn() bool {
	return s.UserID != 0
}

// AddFlash queues a one-shot message for the next rendered page
func (s *Session) AddFlash(kind, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
}

// PopFlashes returns the pending messages and clears them
func (s *Session) PopFlashes() []Flash {
	f := s.Flashes
	s.Flashes = nil
	return f
}

// Store persists sessions in Redis through the shared JSON cache codec,
// with a sliding TTL.
type Store struct {
	cache *Cache // Shared JSON-over-Redis codec
}

// NewStore wraps a Redis client as a session store
func NewStore(rdb *redis.Client) *Store {
	return &Store{cache: NewCache(rdb)}
}

// NewID creates a cryptographically secure session ID
func NewID() (string, error) {
	bytes := make([]byte, IDLength/2) // hex encoding doubles the length
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// New creates and persists a fresh session
func (st *Store) New(ctx context.Context) (*Session, error) {
	id, err := NewID() // Generate new session ID
	if err != nil {
		return nil, err
	}
	sess := &Session{ID: id}
	if err := st.Save(ctx, sess); err != nil {
		return nil, err // Persist before handing out the ID
	}
	return sess, nil
}

// Get loads a session by ID and extends its expiry (sliding timeout)
func (st *Store) Get(ctx context.Context, id string) (*Session, error) {
	var sess Session
	found, err := st.cache.Get(ctx, keyspace+id, &sess)
	if err != nil {
		return nil, err // Redis error or corrupt payload
	}
	if !found {
		return nil, nil // Session does not exist
	}
	sess.ID = id
	_ = st.cache.Touch(ctx, keyspace+id, Timeout) // Slide the expiry window
	return &sess, nil
}

// Save writes the session payload with a fresh TTL
func (st *Store) Save(ctx context.Context, sess *Session) error {
	return st.cache.Set(ctx, keyspace+sess.ID, sess, Timeout)
}

// Delete removes the session, logging the user out everywhere this token is held
func (st *Store) Delete(ctx context.Context, id string) error {
	return st.cache.Delete(ctx, keyspace+id)
}
