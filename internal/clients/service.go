// Package clients registers bank clients and links accounts to them.
package clients

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/teller/internal/model"
	"github.com/cleared-dev/teller/internal/store"
)

// DefaultMinimumAge is the age of majority required to register.
const DefaultMinimumAge = 18

// Store persists client records together with their account links.
// Find returns store.ErrNotFound when no client has the national ID.
type Store interface {
	Find(nationalID int64, loadAccounts bool) (*model.Client, error)
	Save(client *model.Client) error
}

// Service enforces the client registration and account linking rules.
type Service struct {
	store      Store
	now        func() time.Time
	minimumAge int
	log        zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for age checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMinimumAge overrides DefaultMinimumAge.
func WithMinimumAge(age int) Option {
	return func(s *Service) {
		s.minimumAge = age
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates a client Service over st.
func NewService(st Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		now:        time.Now,
		minimumAge: DefaultMinimumAge,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "clients").Logger()
	return s
}

// Register stores a new client. Clients without a birth date, underage
// clients and clients that already carry accounts are rejected before the
// store is consulted; accounts are linked only through AttachAccount.
func (s *Service) Register(c *model.Client) error {
	if c.BirthDate.IsZero() {
		return fmt.Errorf("%w: client %d has no birth date", model.ErrInvalidArgument, c.NationalID)
	}
	if len(c.Accounts) > 0 {
		return fmt.Errorf("%w: client %d must be registered without accounts, got %d", model.ErrInvalidArgument, c.NationalID, len(c.Accounts))
	}
	if age := c.Age(s.now()); age < s.minimumAge {
		return fmt.Errorf("%w: client %d is %d years old, must be at least %d", model.ErrInvalidArgument, c.NationalID, age, s.minimumAge)
	}

	_, err := s.store.Find(c.NationalID, false)
	switch {
	case err == nil:
		return fmt.Errorf("%w: national ID %d", model.ErrClientAlreadyExists, c.NationalID)
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("looking up client %d: %w", c.NationalID, err)
	}

	if err := s.store.Save(c); err != nil {
		return fmt.Errorf("saving client %d: %w", c.NationalID, err)
	}

	s.log.Info().Int64("national_id", c.NationalID).Str("person_type", string(c.PersonType)).Msg("client registered")
	return nil
}

// FindByNationalID loads a client with its accounts. A missing client is
// reported as ErrInvalidArgument.
func (s *Service) FindByNationalID(nationalID int64) (*model.Client, error) {
	c, err := s.store.Find(nationalID, true)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: client %d does not exist", model.ErrInvalidArgument, nationalID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading client %d: %w", nationalID, err)
	}
	return c, nil
}

// AttachAccount adds acct to the client's accounts, sets its owner and saves
// the client. A client may hold at most one account per (type, currency).
func (s *Service) AttachAccount(acct *model.Account, nationalID int64) error {
	c, err := s.FindByNationalID(nationalID)
	if err != nil {
		return err
	}

	if _, held := c.Products()[acct.Product()]; held {
		return fmt.Errorf("%w: client %d already has a %s account", model.ErrProductAlreadyHeld, nationalID, acct.Product())
	}

	c.Accounts = append(c.Accounts, acct)
	acct.Owner = c

	if err := s.store.Save(c); err != nil {
		return fmt.Errorf("saving client %d: %w", nationalID, err)
	}

	s.log.Info().
		Int64("national_id", nationalID).
		Int64("account", acct.Number).
		Str("product", acct.Product().Key()).
		Int("accounts", len(c.Accounts)).
		Msg("account attached")
	return nil
}
