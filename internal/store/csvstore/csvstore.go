// Package csvstore persists clients and accounts as CSV files under a data
// directory:
//
//	clients/clients.csv
//	accounts/accounts.csv
//
// Every save rewrites the whole file through a temp file and rename, so a
// single record is never left half written.
package csvstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cleared-dev/teller/internal/model"
	"github.com/cleared-dev/teller/internal/store"
)

const (
	clientsFile  = "clients/clients.csv"
	accountsFile = "accounts/accounts.csv"
)

// ClientStore is a file-backed client store.
type ClientStore struct {
	mu   sync.Mutex
	path string
}

// NewClientStore creates a ClientStore rooted at dataDir.
func NewClientStore(dataDir string) *ClientStore {
	return &ClientStore{path: filepath.Join(dataDir, clientsFile)}
}

// Find returns the client. Accounts is populated only with loadAccounts.
func (s *ClientStore) Find(nationalID int64, loadAccounts bool) (*model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		if c.NationalID == nationalID {
			if !loadAccounts {
				c.Accounts = nil
			}
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

// Save inserts or replaces the client row, account links included.
func (s *ClientStore) Save(c *model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.readAll()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range clients {
		if existing.NationalID == c.NationalID {
			clients[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		clients = append(clients, c)
	}

	return writeFile(s.path, func(w io.Writer) error {
		return WriteClients(w, clients)
	})
}

// All returns every stored client with account links loaded.
func (s *ClientStore) All() ([]*model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *ClientStore) readAll() ([]*model.Client, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening clients file: %w", err)
	}
	defer f.Close()

	return ReadClients(f)
}

// AccountStore is a file-backed account store.
type AccountStore struct {
	mu   sync.Mutex
	path string
}

// NewAccountStore creates an AccountStore rooted at dataDir.
func NewAccountStore(dataDir string) *AccountStore {
	return &AccountStore{path: filepath.Join(dataDir, accountsFile)}
}

// Find returns the account with an owner reference holding only the national ID.
func (s *AccountStore) Find(number int64) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Number == number {
			return a, nil
		}
	}
	return nil, store.ErrNotFound
}

// Save inserts or replaces the account row.
func (s *AccountStore) Save(a *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.readAll()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range accounts {
		if existing.Number == a.Number {
			accounts[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		accounts = append(accounts, a)
	}

	return writeFile(s.path, func(w io.Writer) error {
		return WriteAccounts(w, accounts)
	})
}

// All returns every stored account.
func (s *AccountStore) All() ([]*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *AccountStore) readAll() ([]*model.Account, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening accounts file: %w", err)
	}
	defer f.Close()

	return ReadAccounts(f)
}

func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
