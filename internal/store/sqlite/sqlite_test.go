package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/teller/internal/model"
	"github.com/cleared-dev/teller/internal/store"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "teller.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestClientStore(t *testing.T) {
	s := openTestDB(t).Clients()

	_, err := s.Find(29857643, false)
	assert.ErrorIs(t, err, store.ErrNotFound)

	c := &model.Client{
		NationalID: 29857643,
		FirstName:  "Pepe",
		LastName:   "Rino",
		BirthDate:  time.Date(1978, 3, 25, 0, 0, 0, 0, time.UTC),
		PersonType: model.PersonTypeNatural,
	}
	require.NoError(t, s.Save(c))

	got, err := s.Find(29857643, true)
	require.NoError(t, err)
	assert.Equal(t, "Pepe", got.FirstName)
	assert.True(t, c.BirthDate.Equal(got.BirthDate))
	assert.Empty(t, got.Accounts)

	c.Accounts = []*model.Account{
		{Number: 2, Type: model.AccountTypeChecking, Currency: model.CurrencyPesos, Balance: decimal.NewFromInt(1000000), Owner: c},
		{Number: 1, Type: model.AccountTypeSavings, Currency: model.CurrencyPesos, Balance: decimal.RequireFromString("0.25"), Owner: c},
	}
	require.NoError(t, s.Save(c))

	bare, err := s.Find(29857643, false)
	require.NoError(t, err)
	assert.Nil(t, bare.Accounts)

	full, err := s.Find(29857643, true)
	require.NoError(t, err)
	require.Len(t, full.Accounts, 2)
	assert.Equal(t, int64(2), full.Accounts[0].Number, "insertion order is kept")
	assert.True(t, full.Accounts[1].Balance.Equal(decimal.RequireFromString("0.25")))
	assert.Same(t, full, full.Accounts[0].Owner)
}

func TestAccountStore(t *testing.T) {
	s := openTestDB(t).Accounts()

	_, err := s.Find(1001)
	assert.ErrorIs(t, err, store.ErrNotFound)

	opened := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	acct := &model.Account{
		Number:   1001,
		Type:     model.AccountTypeSavings,
		Currency: model.CurrencyDollars,
		Balance:  decimal.NewFromInt(500),
		OpenedAt: opened,
		Owner:    &model.Client{NationalID: 40022659},
	}
	require.NoError(t, s.Save(acct))

	got, err := s.Find(1001)
	require.NoError(t, err)
	assert.Equal(t, model.CurrencyDollars, got.Currency)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(500)))
	assert.True(t, got.OpenedAt.Equal(opened))
	assert.Equal(t, int64(40022659), got.OwnerID())

	acct.Balance = decimal.NewFromInt(750)
	require.NoError(t, s.Save(acct))
	got, err = s.Find(1001)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(750)))
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "teller.db")
	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Clients().Save(&model.Client{NationalID: 1, LastName: "Uno"}))
	require.NoError(t, db.Close())

	db, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Clients().Find(1, false)
	require.NoError(t, err)
	assert.Equal(t, "Uno", got.LastName)
}
