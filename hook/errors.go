package hook

import (
	"errors"
	"fmt"
)

var (
	ErrSymbolNotFound  = errors.New("symbol not found")
	ErrAlreadyHooked   = errors.New("already hooked")
	ErrNotHooked       = errors.New("not hooked")
	ErrAlreadyLoaded   = errors.New("type already loaded")
	ErrDuplicateWatch  = errors.New("duplicate watch")
	ErrHookFuncNil     = errors.New("hook function is nil")
	ErrCallbackNil     = errors.New("load callback is nil")
	ErrArgumentInvalid = errors.New("argument invalid")
	ErrSlotChanged     = errors.New("dispatch slot changed concurrently")
	ErrClosed          = errors.New("interceptor closed")
	ErrNotImplemented  = errors.New("not implemented")
)

// PanicError reports a panic raised by a hook body. Panics raised by the
// original implementation are not converted.
type PanicError struct {
	key Key
	v   any
}

func NewPanicError(key Key, v any) *PanicError {
	return &PanicError{key: key, v: v}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("[Panic] hook: %s, panic: %v", e.key, e.v)
}

func (e *PanicError) Key() Key {
	return e.key
}

func (e *PanicError) Panic() any {
	return e.v
}

func (e *PanicError) Unwrap() error {
	err, _ := e.v.(error)
	return err
}
