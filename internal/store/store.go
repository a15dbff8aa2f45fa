// Package store holds what the persistence backends share: the not-found
// sentinel and copy helpers that keep stored records apart from the working
// copies handed to callers.
package store

import (
	"errors"

	"github.com/cleared-dev/teller/internal/model"
)

// ErrNotFound is returned by Find when no record has the requested key.
var ErrNotFound = errors.New("not found")

// OwnerRef returns the owner reference carried by an account loaded on its own.
// Only the national ID is populated; load the client for the full record.
func OwnerRef(nationalID int64) *model.Client {
	if nationalID == 0 {
		return nil
	}
	return &model.Client{NationalID: nationalID}
}

// CloneAccount copies an account, replacing its owner with an OwnerRef.
func CloneAccount(a *model.Account) *model.Account {
	cp := *a
	cp.Owner = OwnerRef(a.OwnerID())
	return &cp
}

// CloneClient copies a client. With withAccounts the account collection is
// copied too and every copied account points back at the new client;
// otherwise Accounts is nil.
func CloneClient(c *model.Client, withAccounts bool) *model.Client {
	cp := *c
	cp.Accounts = nil
	if !withAccounts {
		return &cp
	}
	for _, a := range c.Accounts {
		ac := *a
		ac.Owner = &cp
		cp.Accounts = append(cp.Accounts, &ac)
	}
	return &cp
}
