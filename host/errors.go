package host

import "errors"

var (
	ErrTypeNotDeclared = errors.New("type not declared")
	ErrTypeExists      = errors.New("type already declared")
	ErrTypeNotLoaded   = errors.New("type not loaded")
	ErrMethodNotFound  = errors.New("method not found")
	ErrArgumentInvalid = errors.New("argument invalid")
)
