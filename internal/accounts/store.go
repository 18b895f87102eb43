// Package accounts holds the per-account records of the client.
package accounts

import (
	"github.com/meszmate/sessionroster/internal/domain"
)

// Store is an insertion-ordered collection of account records keyed by JID.
//
// Store is not safe for concurrent use. It is owned by the orchestrator and
// only touched from its action loop.
type Store struct {
	order   []domain.AccountID
	records map[domain.AccountID]domain.Account
}

// NewStore creates a store holding the given records in order
func NewStore(records ...domain.Account) *Store {
	s := &Store{
		records: make(map[domain.AccountID]domain.Account, len(records)),
	}
	for _, r := range records {
		s.Upsert(r)
	}
	return s
}

// Upsert inserts the record or replaces the existing record with the same
// JID in place. New records are appended.
func (s *Store) Upsert(record domain.Account) {
	if _, exists := s.records[record.JID]; !exists {
		s.order = append(s.order, record.JID)
	}
	s.records[record.JID] = record.Clone()
}

// Remove deletes the record for id if present
func (s *Store) Remove(id domain.AccountID) {
	if _, exists := s.records[id]; !exists {
		return
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

// Get returns the record for id
func (s *Store) Get(id domain.AccountID) (domain.Account, bool) {
	if s == nil {
		return domain.Account{}, false
	}
	r, ok := s.records[id]
	if !ok {
		return domain.Account{}, false
	}
	return r.Clone(), true
}

// Contains reports whether a record exists for id
func (s *Store) Contains(id domain.AccountID) bool {
	if s == nil {
		return false
	}
	_, ok := s.records[id]
	return ok
}

// SetAvailability updates the connection status of the record for id. It
// does nothing if no such record exists.
func (s *Store) SetAvailability(id domain.AccountID, status domain.ConnectionStatus) {
	r, ok := s.records[id]
	if !ok {
		return
	}
	r.Status = status
	s.records[id] = r
}

// IDs returns the account ids in insertion order
func (s *Store) IDs() []domain.AccountID {
	if s == nil {
		return nil
	}
	ids := make([]domain.AccountID, len(s.order))
	copy(ids, s.order)
	return ids
}

// All returns copies of all records in insertion order
func (s *Store) All() []domain.Account {
	if s == nil {
		return nil
	}
	all := make([]domain.Account, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.records[id].Clone())
	}
	return all
}

// Len returns the number of records
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Clone returns an independent copy of the store
func (s *Store) Clone() *Store {
	c := &Store{
		order:   make([]domain.AccountID, len(s.order)),
		records: make(map[domain.AccountID]domain.Account, len(s.records)),
	}
	copy(c.order, s.order)
	for id, r := range s.records {
		c.records[id] = r.Clone()
	}
	return c
}

// Equal reports whether both stores hold the same records in the same order
func (s *Store) Equal(other *Store) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i, id := range s.order {
		if other.order[i] != id {
			return false
		}
		if !accountsEqual(s.records[id], other.records[id]) {
			return false
		}
	}
	return true
}

func accountsEqual(a, b domain.Account) bool {
	if a.JID != b.JID || a.Status != b.Status || a.Avatar != b.Avatar {
		return false
	}
	if (a.Profile == nil) != (b.Profile == nil) {
		return false
	}
	if a.Profile != nil && *a.Profile != *b.Profile {
		return false
	}
	if len(a.Contacts) != len(b.Contacts) {
		return false
	}
	for i := range a.Contacts {
		ca, cb := a.Contacts[i], b.Contacts[i]
		if ca.JID != cb.JID || ca.Name != cb.Name || len(ca.Groups) != len(cb.Groups) {
			return false
		}
		for j := range ca.Groups {
			if ca.Groups[j] != cb.Groups[j] {
				return false
			}
		}
	}
	return true
}
