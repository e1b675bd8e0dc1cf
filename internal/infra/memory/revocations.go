package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationList remembers revoked token ids until they would have expired anyway.
type RevocationList struct {
	clock func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{clock: time.Now, revoked: make(map[string]time.Time)}
}

func (r *RevocationList) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock()
	for id, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, id)
		}
	}
	if until.After(now) {
		r.revoked[tokenID] = until
	}
	return nil
}

func (r *RevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[tokenID]
	return ok && until.After(r.clock()), nil
}
