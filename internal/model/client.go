package model

import "time"

// PersonType distinguishes natural persons from legal entities.
type PersonType string

const (
	PersonTypeNatural PersonType = "PERSONA_FISICA"
	PersonTypeLegal   PersonType = "PERSONA_JURIDICA"
)

// ParsePersonType returns the PersonType named s.
func ParsePersonType(s string) (PersonType, bool) {
	switch PersonType(s) {
	case PersonTypeNatural, PersonTypeLegal:
		return PersonType(s), true
	}
	return "", false
}

// Client is a bank customer identified by national ID (DNI).
type Client struct {
	NationalID int64
	FirstName  string
	LastName   string
	BirthDate  time.Time
	PersonType PersonType
	Accounts   []*Account
}

// Age returns the client's age in whole years on now's calendar date.
// Someone born on Feb 29 has a birthday on Mar 1 in non-leap years.
func (c *Client) Age(now time.Time) int {
	by, bm, bd := c.BirthDate.Date()
	ny, nm, nd := now.Date()

	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age
}

// Products returns the set of (type, currency) pairs the client holds.
func (c *Client) Products() map[Product]struct{} {
	set := make(map[Product]struct{}, len(c.Accounts))
	for _, a := range c.Accounts {
		set[a.Product()] = struct{}{}
	}
	return set
}

// HasAccount reports whether the client already holds an account of type t in currency cur.
func (c *Client) HasAccount(t AccountType, cur Currency) bool {
	_, ok := c.Products()[Product{Type: t, Currency: cur}]
	return ok
}

// FullName returns "First Last".
func (c *Client) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
