// Package accounts opens bank accounts for registered clients.
package accounts

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/teller/internal/model"
	"github.com/cleared-dev/teller/internal/store"
)

// Store persists account records. Find returns store.ErrNotFound when no
// account has the number.
type Store interface {
	Find(number int64) (*model.Account, error)
	Save(account *model.Account) error
}

// Attacher links an account to its owning client and persists the client.
// *clients.Service implements it.
type Attacher interface {
	AttachAccount(account *model.Account, nationalID int64) error
}

// Service enforces the account opening rules.
type Service struct {
	store   Store
	clients Attacher
	catalog *Catalog
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to stamp OpenedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates an account Service. A nil catalog means DefaultCatalog.
func NewService(st Store, clients Attacher, catalog *Catalog, opts ...Option) *Service {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	s := &Service{
		store:   st,
		clients: clients,
		catalog: catalog,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "accounts").Logger()
	return s
}

// Catalog returns the products this Service opens.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// OpenAccount validates acct and opens it for the client with ownerNationalID.
//
// Checks run in order and each one stops the pipeline: account number
// uniqueness, product support, then the client-side duplicate check done by
// AttachAccount. The client is saved before the account, and the two writes
// are not atomic: if the account save fails the client keeps the link.
func (s *Service) OpenAccount(acct *model.Account, ownerNationalID int64) error {
	_, err := s.store.Find(acct.Number)
	switch {
	case err == nil:
		return fmt.Errorf("%w: account %d", model.ErrAccountAlreadyExists, acct.Number)
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("looking up account %d: %w", acct.Number, err)
	}

	if !s.catalog.Supports(acct.Product()) {
		return fmt.Errorf("%w: %s %s", model.ErrProductNotSupported, acct.Type, acct.Currency)
	}

	if err := s.clients.AttachAccount(acct, ownerNationalID); err != nil {
		return err
	}

	if acct.OpenedAt.IsZero() {
		acct.OpenedAt = s.now().UTC()
	}

	if err := s.store.Save(acct); err != nil {
		s.log.Error().Err(err).
			Int64("account", acct.Number).
			Int64("national_id", ownerNationalID).
			Msg("account linked to client but not saved")
		return fmt.Errorf("saving account %d: %w", acct.Number, err)
	}

	s.log.Info().
		Int64("account", acct.Number).
		Int64("national_id", ownerNationalID).
		Str("product", acct.Product().Key()).
		Str("balance", acct.Balance.String()).
		Msg("account opened")
	return nil
}

// FindByID returns the account with the given number. A missing account is
// reported as ok == false, not as an error.
func (s *Service) FindByID(number int64) (*model.Account, bool, error) {
	acct, err := s.store.Find(number)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading account %d: %w", number, err)
	}
	return acct, true, nil
}
