// Package sqlite persists clients and accounts in a SQLite database using the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/cleared-dev/teller/internal/model"
	"github.com/cleared-dev/teller/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	national_id INTEGER PRIMARY KEY,
	first_name  TEXT NOT NULL,
	last_name   TEXT NOT NULL,
	birth_date  TEXT NOT NULL,
	person_type TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS client_accounts (
	national_id    INTEGER NOT NULL REFERENCES clients(national_id),
	position       INTEGER NOT NULL,
	account_number INTEGER NOT NULL,
	account_type   TEXT NOT NULL,
	currency       TEXT NOT NULL,
	balance        TEXT NOT NULL,
	PRIMARY KEY (national_id, position)
);

CREATE TABLE IF NOT EXISTS accounts (
	number       INTEGER PRIMARY KEY,
	account_type TEXT NOT NULL,
	currency     TEXT NOT NULL,
	balance      TEXT NOT NULL,
	opened_at    TEXT NOT NULL,
	owner_id     INTEGER NOT NULL
);
`

const dateFormat = "2006-01-02"

// DB wraps the connection shared by the client and account stores.
type DB struct {
	conn *sql.DB
	path string
	log  zerolog.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
// Paths starting with "file:" are passed to the driver untouched.
func Open(path string, log zerolog.Logger) (*DB, error) {
	if !strings.HasPrefix(path, "file:") {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		path = absPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps in-memory
	// databases alive for the lifetime of the DB.
	conn.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	db := &DB{conn: conn, path: path, log: log.With().Str("component", "sqlite").Logger()}
	db.log.Debug().Str("path", path).Msg("database opened")
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Clients returns the client store backed by db.
func (db *DB) Clients() *ClientStore {
	return &ClientStore{db: db}
}

// Accounts returns the account store backed by db.
func (db *DB) Accounts() *AccountStore {
	return &AccountStore{db: db}
}

// ClientStore stores clients in the clients and client_accounts tables.
type ClientStore struct {
	db *DB
}

// Find returns the client. Accounts is populated only with loadAccounts.
func (s *ClientStore) Find(nationalID int64, loadAccounts bool) (*model.Client, error) {
	var (
		c     model.Client
		birth string
		ptype string
	)
	err := s.db.conn.QueryRow(
		`SELECT national_id, first_name, last_name, birth_date, person_type FROM clients WHERE national_id = ?`,
		nationalID,
	).Scan(&c.NationalID, &c.FirstName, &c.LastName, &birth, &ptype)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying client %d: %w", nationalID, err)
	}
	c.PersonType = model.PersonType(ptype)
	if birth != "" {
		c.BirthDate, err = time.Parse(dateFormat, birth)
		if err != nil {
			return nil, fmt.Errorf("parsing birth_date %q: %w", birth, err)
		}
	}

	if !loadAccounts {
		return &c, nil
	}

	rows, err := s.db.conn.Query(
		`SELECT account_number, account_type, currency, balance FROM client_accounts WHERE national_id = ? ORDER BY position`,
		nationalID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying accounts of client %d: %w", nationalID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a          model.Account
			atype, cur string
			bal        string
		)
		if err := rows.Scan(&a.Number, &atype, &cur, &bal); err != nil {
			return nil, fmt.Errorf("scanning client account: %w", err)
		}
		a.Type = model.AccountType(atype)
		a.Currency = model.Currency(cur)
		if a.Balance, err = decimal.NewFromString(bal); err != nil {
			return nil, fmt.Errorf("parsing balance %q: %w", bal, err)
		}
		a.Owner = &c
		c.Accounts = append(c.Accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client accounts: %w", err)
	}
	return &c, nil
}

// Save upserts the client and replaces its account links in one transaction.
func (s *ClientStore) Save(c *model.Client) (err error) {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	birth := ""
	if !c.BirthDate.IsZero() {
		birth = c.BirthDate.Format(dateFormat)
	}
	_, err = tx.Exec(`
		INSERT INTO clients (national_id, first_name, last_name, birth_date, person_type)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(national_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			birth_date = excluded.birth_date,
			person_type = excluded.person_type`,
		c.NationalID, c.FirstName, c.LastName, birth, string(c.PersonType),
	)
	if err != nil {
		return fmt.Errorf("upserting client %d: %w", c.NationalID, err)
	}

	if _, err = tx.Exec(`DELETE FROM client_accounts WHERE national_id = ?`, c.NationalID); err != nil {
		return fmt.Errorf("clearing accounts of client %d: %w", c.NationalID, err)
	}
	for i, a := range c.Accounts {
		_, err = tx.Exec(
			`INSERT INTO client_accounts (national_id, position, account_number, account_type, currency, balance) VALUES (?, ?, ?, ?, ?, ?)`,
			c.NationalID, i, a.Number, string(a.Type), string(a.Currency), a.Balance.String(),
		)
		if err != nil {
			return fmt.Errorf("linking account %d to client %d: %w", a.Number, c.NationalID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing client %d: %w", c.NationalID, err)
	}
	return nil
}

// AccountStore stores accounts in the accounts table.
type AccountStore struct {
	db *DB
}

// Find returns the account with an owner reference holding only the national ID.
func (s *AccountStore) Find(number int64) (*model.Account, error) {
	var (
		a          model.Account
		atype, cur string
		bal        string
		opened     string
		owner      int64
	)
	err := s.db.conn.QueryRow(
		`SELECT number, account_type, currency, balance, opened_at, owner_id FROM accounts WHERE number = ?`,
		number,
	).Scan(&a.Number, &atype, &cur, &bal, &opened, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account %d: %w", number, err)
	}
	a.Type = model.AccountType(atype)
	a.Currency = model.Currency(cur)

	if a.Balance, err = decimal.NewFromString(bal); err != nil {
		return nil, fmt.Errorf("parsing balance %q: %w", bal, err)
	}
	if opened != "" {
		if a.OpenedAt, err = time.Parse(time.RFC3339, opened); err != nil {
			return nil, fmt.Errorf("parsing opened_at %q: %w", opened, err)
		}
	}
	a.Owner = store.OwnerRef(owner)
	return &a, nil
}

// Save upserts the account.
func (s *AccountStore) Save(a *model.Account) error {
	opened := ""
	if !a.OpenedAt.IsZero() {
		opened = a.OpenedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.conn.Exec(`
		INSERT INTO accounts (number, account_type, currency, balance, opened_at, owner_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			account_type = excluded.account_type,
			currency = excluded.currency,
			balance = excluded.balance,
			opened_at = excluded.opened_at,
			owner_id = excluded.owner_id`,
		a.Number, string(a.Type), string(a.Currency), a.Balance.String(), opened, a.OwnerID(),
	)
	if err != nil {
		return fmt.Errorf("upserting account %d: %w", a.Number, err)
	}
	return nil
}
