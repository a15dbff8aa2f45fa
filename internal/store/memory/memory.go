// Package memory provides map-backed stores. Records are copied on the way in
// and on the way out.
package memory

import (
	"sync"

	"github.com/cleared-dev/teller/internal/model"
	"github.com/cleared-dev/teller/internal/store"
)

// ClientStore keeps clients and their account links in memory.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[int64]*model.Client
}

// NewClientStore creates an empty ClientStore.
func NewClientStore() *ClientStore {
	return &ClientStore{clients: make(map[int64]*model.Client)}
}

// Find returns a copy of the client. Accounts is populated only with loadAccounts.
func (s *ClientStore) Find(nationalID int64, loadAccounts bool) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[nationalID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return store.CloneClient(c, loadAccounts), nil
}

// Save inserts or replaces the client record.
func (s *ClientStore) Save(c *model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.NationalID] = store.CloneClient(c, true)
	return nil
}

// Len returns the number of stored clients.
func (s *ClientStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// AccountStore keeps accounts in memory.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[int64]*model.Account
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[int64]*model.Account)}
}

// Find returns a copy of the account with an owner reference holding only the national ID.
func (s *AccountStore) Find(number int64) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[number]
	if !ok {
		return nil, store.ErrNotFound
	}
	return store.CloneAccount(a), nil
}

// Save inserts or replaces the account record.
func (s *AccountStore) Save(a *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[a.Number] = store.CloneAccount(a)
	return nil
}

// Len returns the number of stored accounts.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
