package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies the products a bank can open.
type AccountType string

const (
	AccountTypeSavings  AccountType = "CAJA_AHORRO"
	AccountTypeChecking AccountType = "CUENTA_CORRIENTE"
)

// Currency is the denomination of an account.
type Currency string

const (
	CurrencyPesos   Currency = "PESOS"
	CurrencyDollars Currency = "DOLARES"
	CurrencyEuros   Currency = "EUROS"
	// CurrencyBitcoin is a valid currency that no product is offered in.
	CurrencyBitcoin Currency = "BITCOIN"
)

// AccountTypes lists every known account type.
func AccountTypes() []AccountType {
	return []AccountType{AccountTypeSavings, AccountTypeChecking}
}

// Currencies lists every known currency.
func Currencies() []Currency {
	return []Currency{CurrencyPesos, CurrencyDollars, CurrencyEuros, CurrencyBitcoin}
}

// ParseAccountType returns the AccountType named s.
func ParseAccountType(s string) (AccountType, bool) {
	for _, t := range AccountTypes() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ParseCurrency returns the Currency named s.
func ParseCurrency(s string) (Currency, bool) {
	for _, c := range Currencies() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Product is an (account type, currency) pair.
type Product struct {
	Type     AccountType
	Currency Currency
}

// Key encodes the pair as the concatenation of its identifiers, e.g. "CAJA_AHORROPESOS".
func (p Product) Key() string {
	return string(p.Type) + string(p.Currency)
}

func (p Product) String() string {
	return string(p.Type) + " in " + string(p.Currency)
}

// Account is a bank account. Owner is nil until the account is attached to a client.
type Account struct {
	Number   int64
	Type     AccountType
	Currency Currency
	Balance  decimal.Decimal
	OpenedAt time.Time
	Owner    *Client
}

// Product returns the account's (type, currency) pair.
func (a *Account) Product() Product {
	return Product{Type: a.Type, Currency: a.Currency}
}

// OwnerID returns the owner's national ID, or 0 for an unattached account.
func (a *Account) OwnerID() int64 {
	if a.Owner == nil {
		return 0
	}
	return a.Owner.NationalID
}
