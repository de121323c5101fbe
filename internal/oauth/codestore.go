// Package oauth holds the short-lived state shared between the redirect and
// exchange legs of the external login flow. The store is owned by main and
// injected into the handlers, never a package-level global.
package oauth

import (
	"sync"
	"time"
)

type entry struct {
	userID    uint
	expiresAt time.Time
}

// CodeStore is a mutex-guarded expiring map of one-time codes. Codes are
// consumed on redemption, so a code can authenticate at most once.
type CodeStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

func NewCodeStore(ttl time.Duration) *CodeStore {
	return &CodeStore{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Put registers a code for the given user. Expired leftovers are swept
// opportunistically so the map cannot grow without bound.
func (s *CodeStore) Put(code string, userID uint) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}

	s.entries[code] = entry{userID: userID, expiresAt: now.Add(s.ttl)}
}

// Redeem consumes a code and returns the user it was issued for. A code that
// is unknown, expired or already redeemed returns false.
func (s *CodeStore) Redeem(code string) (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[code]
	if !ok {
		return 0, false
	}
	delete(s.entries, code)

	if time.Now().After(e.expiresAt) {
		return 0, false
	}
	return e.userID, true
}
