package model

import "errors"

// Rule violations reported by the registries. Match with errors.Is; the
// message text around them is for diagnostics only.
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrClientAlreadyExists  = errors.New("client already exists")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrProductNotSupported  = errors.New("account product not supported")
	ErrProductAlreadyHeld   = errors.New("client already holds an account of this type")
)
