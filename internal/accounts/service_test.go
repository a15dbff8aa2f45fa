package accounts

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/teller/internal/clients"
	"github.com/cleared-dev/teller/internal/model"
	"github.com/cleared-dev/teller/internal/store"
	"github.com/cleared-dev/teller/internal/store/memory"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Find(number int64) (*model.Account, error) {
	args := m.Called(number)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *mockStore) Save(a *model.Account) error {
	return m.Called(a).Error(0)
}

type mockAttacher struct {
	mock.Mock
}

func (m *mockAttacher) AttachAccount(a *model.Account, nationalID int64) error {
	return m.Called(a, nationalID).Error(0)
}

// failingStore wraps a memory store and fails every Save.
type failingStore struct {
	*memory.AccountStore
}

func (failingStore) Save(*model.Account) error {
	return errors.New("write failed")
}

var opened = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	clientStore  *memory.ClientStore
	accountStore *memory.AccountStore
	clients      *clients.Service
	accounts     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cs := memory.NewClientStore()
	as := memory.NewAccountStore()
	csvc := clients.NewService(cs, clients.WithClock(func() time.Time { return opened }))
	return &fixture{
		clientStore:  cs,
		accountStore: as,
		clients:      csvc,
		accounts:     NewService(as, csvc, DefaultCatalog(), WithClock(func() time.Time { return opened })),
	}
}

func (f *fixture) register(t *testing.T, dni int64) {
	t.Helper()
	require.NoError(t, f.clients.Register(&model.Client{
		NationalID: dni,
		FirstName:  "Pepe",
		LastName:   "Rino",
		BirthDate:  time.Date(1978, 3, 25, 0, 0, 0, 0, time.UTC),
		PersonType: model.PersonTypeNatural,
	}))
}

func account(number int64, at model.AccountType, cur model.Currency, balance int64) *model.Account {
	return &model.Account{Number: number, Type: at, Currency: cur, Balance: decimal.NewFromInt(balance)}
}

func TestOpenAccount_Success(t *testing.T) {
	f := newFixture(t)
	f.register(t, 26456439)

	acct := account(1001, model.AccountTypeSavings, model.CurrencyPesos, 500000)
	require.NoError(t, f.accounts.OpenAccount(acct, 26456439))

	c, err := f.clients.FindByNationalID(26456439)
	require.NoError(t, err)
	require.Len(t, c.Accounts, 1)
	assert.Equal(t, int64(1001), c.Accounts[0].Number)

	require.NotNil(t, acct.Owner)
	assert.Equal(t, int64(26456439), acct.Owner.NationalID)
	assert.True(t, acct.OpenedAt.Equal(opened))

	stored, ok, err := f.accounts.FindByID(1001)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(26456439), stored.OwnerID())
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(500000)))
}

func TestOpenAccount_DuplicateProductForClient(t *testing.T) {
	f := newFixture(t)
	f.register(t, 26456439)

	require.NoError(t, f.accounts.OpenAccount(account(1001, model.AccountTypeSavings, model.CurrencyPesos, 500000), 26456439))

	dup := account(1002, model.AccountTypeSavings, model.CurrencyPesos, 10)
	err := f.accounts.OpenAccount(dup, 26456439)
	require.ErrorIs(t, err, model.ErrProductAlreadyHeld)

	c, err := f.clients.FindByNationalID(26456439)
	require.NoError(t, err)
	assert.Len(t, c.Accounts, 1)

	_, ok, err := f.accounts.FindByID(1002)
	require.NoError(t, err)
	assert.False(t, ok, "rejected account must not be written")
}

func TestOpenAccount_UnsupportedProduct(t *testing.T) {
	st := new(mockStore)
	att := new(mockAttacher)
	st.On("Find", int64(1003)).Return(nil, store.ErrNotFound)

	svc := NewService(st, att, DefaultCatalog())
	err := svc.OpenAccount(account(1003, model.AccountTypeChecking, model.CurrencyBitcoin, 0), 26456439)
	require.ErrorIs(t, err, model.ErrProductNotSupported)
	assert.Contains(t, err.Error(), "CUENTA_CORRIENTE")
	assert.Contains(t, err.Error(), "BITCOIN")

	att.AssertNotCalled(t, "AttachAccount", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "Save", mock.Anything)
}

func TestOpenAccount_UnsupportedPairs(t *testing.T) {
	cat := DefaultCatalog()
	for _, at := range model.AccountTypes() {
		for _, cur := range model.Currencies() {
			p := model.Product{Type: at, Currency: cur}
			if cat.Supports(p) {
				continue
			}
			t.Run(p.Key(), func(t *testing.T) {
				f := newFixture(t)
				f.register(t, 1)
				err := f.accounts.OpenAccount(account(10, at, cur, 0), 1)
				assert.ErrorIs(t, err, model.ErrProductNotSupported)
			})
		}
	}
}

func TestOpenAccount_AccountNumberTaken(t *testing.T) {
	st := new(mockStore)
	att := new(mockAttacher)
	st.On("Find", int64(1001)).Return(&model.Account{Number: 1001}, nil)

	svc := NewService(st, att, DefaultCatalog())

	// The owner does not exist and the product is unsupported; uniqueness wins.
	err := svc.OpenAccount(account(1001, model.AccountTypeChecking, model.CurrencyBitcoin, 0), 99999999)
	require.ErrorIs(t, err, model.ErrAccountAlreadyExists)
	assert.Contains(t, err.Error(), "1001")

	att.AssertNotCalled(t, "AttachAccount", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "Save", mock.Anything)
}

func TestOpenAccount_AccountNumberTakenWithoutOwner(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.accountStore.Save(account(1001, model.AccountTypeSavings, model.CurrencyPesos, 0)))

	err := f.accounts.OpenAccount(account(1001, model.AccountTypeSavings, model.CurrencyPesos, 0), 12345678)
	assert.ErrorIs(t, err, model.ErrAccountAlreadyExists)
}

func TestOpenAccount_UnknownOwner(t *testing.T) {
	f := newFixture(t)

	err := f.accounts.OpenAccount(account(1001, model.AccountTypeSavings, model.CurrencyPesos, 0), 12345678)
	require.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.Equal(t, 0, f.accountStore.Len())
}

func TestOpenAccount_RejectedAccountUnchanged(t *testing.T) {
	f := newFixture(t)
	f.register(t, 26456439)
	require.NoError(t, f.accounts.OpenAccount(account(1001, model.AccountTypeSavings, model.CurrencyPesos, 0), 26456439))

	tests := []struct {
		name  string
		owner int64
		want  error
	}{
		{"unknown owner", 12345678, model.ErrInvalidArgument},
		{"product already held", 26456439, model.ErrProductAlreadyHeld},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := account(1002, model.AccountTypeSavings, model.CurrencyPesos, 0)
			err := f.accounts.OpenAccount(acct, tt.owner)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, acct.OpenedAt.IsZero())
			assert.Nil(t, acct.Owner)
		})
	}
}

func TestOpenAccount_PropagatesAttachError(t *testing.T) {
	st := new(mockStore)
	att := new(mockAttacher)
	acct := account(1001, model.AccountTypeSavings, model.CurrencyDollars, 5)
	st.On("Find", int64(1001)).Return(nil, store.ErrNotFound)
	att.On("AttachAccount", acct, int64(7)).Return(model.ErrProductAlreadyHeld)

	svc := NewService(st, att, nil)
	err := svc.OpenAccount(acct, 7)
	assert.Equal(t, model.ErrProductAlreadyHeld, err, "attach errors pass through unchanged")
	st.AssertNotCalled(t, "Save", mock.Anything)
}

func TestOpenAccount_WriteOrder(t *testing.T) {
	st := new(mockStore)
	att := new(mockAttacher)
	acct := account(1001, model.AccountTypeChecking, model.CurrencyPesos, 1000000)

	var order []string
	st.On("Find", int64(1001)).Return(nil, store.ErrNotFound)
	att.On("AttachAccount", acct, int64(7)).Return(nil).Run(func(mock.Arguments) { order = append(order, "client") })
	st.On("Save", acct).Return(nil).Run(func(mock.Arguments) { order = append(order, "account") })

	svc := NewService(st, att, DefaultCatalog())
	require.NoError(t, svc.OpenAccount(acct, 7))

	assert.Equal(t, []string{"client", "account"}, order)
	st.AssertNumberOfCalls(t, "Save", 1)
	att.AssertNumberOfCalls(t, "AttachAccount", 1)
}

func TestOpenAccount_LookupFailure(t *testing.T) {
	st := new(mockStore)
	att := new(mockAttacher)
	st.On("Find", int64(1)).Return(nil, errors.New("io error"))

	svc := NewService(st, att, DefaultCatalog())
	err := svc.OpenAccount(account(1, model.AccountTypeSavings, model.CurrencyPesos, 0), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrAccountAlreadyExists)
	att.AssertNotCalled(t, "AttachAccount", mock.Anything, mock.Anything)
}

// The client and account writes are not atomic. When the account save fails
// the client keeps a link to an account that was never stored.
func TestOpenAccount_PartialFailureWindow(t *testing.T) {
	f := newFixture(t)
	f.register(t, 40022659)
	svc := NewService(failingStore{f.accountStore}, f.clients, DefaultCatalog())

	err := svc.OpenAccount(account(1001, model.AccountTypeSavings, model.CurrencyPesos, 100), 40022659)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write failed")

	c, err := f.clients.FindByNationalID(40022659)
	require.NoError(t, err)
	require.Len(t, c.Accounts, 1, "client link survives the failed account write")
	assert.Equal(t, int64(1001), c.Accounts[0].Number)

	_, ok, err := f.accounts.FindByID(1001)
	require.NoError(t, err)
	assert.False(t, ok, "account record is missing")

	// Retrying with the same number is now blocked on the client side.
	err = f.accounts.OpenAccount(account(1001, model.AccountTypeSavings, model.CurrencyPesos, 100), 40022659)
	assert.ErrorIs(t, err, model.ErrProductAlreadyHeld)
}

func TestOpenAccount_TwoProducts(t *testing.T) {
	f := newFixture(t)
	f.register(t, 40022659)

	savings := account(1, model.AccountTypeSavings, model.CurrencyPesos, 700000)
	dollars := account(2, model.AccountTypeSavings, model.CurrencyDollars, 500)
	require.NoError(t, f.accounts.OpenAccount(savings, 40022659))
	require.NoError(t, f.accounts.OpenAccount(dollars, 40022659))

	c, err := f.clients.FindByNationalID(40022659)
	require.NoError(t, err)
	assert.Len(t, c.Accounts, 2)
	assert.Equal(t, int64(40022659), savings.OwnerID())
	assert.Equal(t, int64(40022659), dollars.OwnerID())
	assert.Equal(t, 2, f.accountStore.Len())
}

func TestOpenAccount_KeepsOpenedAt(t *testing.T) {
	f := newFixture(t)
	f.register(t, 1)

	stamp := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	acct := account(1, model.AccountTypeSavings, model.CurrencyPesos, 0)
	acct.OpenedAt = stamp
	require.NoError(t, f.accounts.OpenAccount(acct, 1))
	assert.True(t, acct.OpenedAt.Equal(stamp))
}

func TestFindByID(t *testing.T) {
	st := new(mockStore)
	st.On("Find", int64(1)).Return(&model.Account{Number: 1}, nil)
	st.On("Find", int64(2)).Return(nil, store.ErrNotFound)
	st.On("Find", int64(3)).Return(nil, errors.New("broken"))

	svc := NewService(st, new(mockAttacher), nil)

	acct, ok, err := svc.FindByID(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), acct.Number)

	acct, ok, err = svc.FindByID(2)
	require.NoError(t, err, "absence is not an error")
	assert.False(t, ok)
	assert.Nil(t, acct)

	_, _, err = svc.FindByID(3)
	assert.Error(t, err)
}

func TestCatalogAccessor(t *testing.T) {
	cat := NewCatalog(model.Product{Type: model.AccountTypeSavings, Currency: model.CurrencyEuros})
	svc := NewService(new(mockStore), new(mockAttacher), cat)
	assert.Same(t, cat, svc.Catalog())

	assert.Equal(t, 3, NewService(new(mockStore), new(mockAttacher), nil).Catalog().Len())
}
