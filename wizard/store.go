package wizard

import (
	"math/rand"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store holds active sessions in memory behind an LRU bound, so abandoned
// sessions are evicted instead of accumulating. Nothing is persisted across
// process restarts.
type Store struct {
	cache *lru.Cache[string, *Session]
}

func NewStore(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = 1024
	}
	cache, err := lru.New[string, *Session](capacity)
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache}, nil
}

// Create makes a fresh session on the initial step.
func (st *Store) Create() *Session {
	now := time.Now()
	session := &Session{
		ID:        newSessionID(),
		Step:      StepName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.cache.Add(session.ID, session)
	return session
}

func (st *Store) Get(id string) (*Session, bool) {
	return st.cache.Get(id)
}

func (st *Store) Delete(id string) {
	st.cache.Remove(id)
}

func (st *Store) Len() int {
	return st.cache.Len()
}

const idCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

func newSessionID() string {
	suffix := make([]byte, 8)
	for i := range suffix {
		suffix[i] = idCharset[rand.Intn(len(idCharset))]
	}
	return time.Now().Format("20060102150405") + "-" + string(suffix)
}
