package host

import (
	"fmt"
	"sync/atomic"
)

type TypeID uint64

// Impl is the body of a method. recv is the receiver the host passed.
type Impl = func(recv any, args ...any) (any, error)

// Code is an immutable implementation cell. A Slot points at exactly one
// Code at a time; the pointer identity is what gets swapped.
type Code struct {
	fn Impl
}

type Slot struct {
	sig   Signature
	owner *Type
	code  atomic.Pointer[Code]
}

// Type is a loaded type. Values are only created by Runtime.Load.
type Type struct {
	id    TypeID
	name  string
	slots map[string]*Slot
	order []*Slot
}

func NewCode(fn Impl) *Code {
	return &Code{fn: fn}
}

func (c *Code) Call(recv any, args ...any) (any, error) {
	return c.fn(recv, args...)
}

func (s *Slot) Signature() Signature {
	return s.sig
}

func (s *Slot) Owner() *Type {
	return s.owner
}

func (s *Slot) Load() *Code {
	return s.code.Load()
}

func (s *Slot) CompareAndSwap(old, code *Code) bool {
	if code == nil {
		return false
	}
	return s.code.CompareAndSwap(old, code)
}

// Call dispatches through the slot's current code after checking the
// argument count and kinds against the signature.
func (s *Slot) Call(recv any, args ...any) (any, error) {
	if len(args) != len(s.sig.Params) {
		return nil, fmt.Errorf("%w: %s.%s takes %d arguments, got %d", ErrArgumentInvalid, s.owner.name, s.sig.Descriptor(), len(s.sig.Params), len(args))
	}
	for i, arg := range args {
		if k := KindOf(arg); !s.sig.Params[i].Accepts(k) {
			return nil, fmt.Errorf("%w: %s.%s argument %d is %s, want %s", ErrArgumentInvalid, s.owner.name, s.sig.Descriptor(), i, k, s.sig.Params[i])
		}
	}
	return s.code.Load().Call(recv, args...)
}

func (t *Type) ID() TypeID {
	return t.id
}

func (t *Type) Name() string {
	return t.name
}

func (t *Type) Methods() []Signature {
	sigs := make([]Signature, len(t.order))
	for i, slot := range t.order {
		sigs[i] = slot.sig
	}
	return sigs
}

// Slot looks a method up by its exact descriptor.
func (t *Type) Slot(descriptor string) (*Slot, bool) {
	slot, ok := t.slots[descriptor]
	return slot, ok
}

// Invoke is how the host calls a method: the signature is derived from the
// kinds of args and must match a declared method exactly.
func (t *Type) Invoke(recv any, name string, args ...any) (any, error) {
	sig := signatureOf(name, args)
	slot, ok := t.slots[sig.Descriptor()]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrMethodNotFound, t.name, sig.Descriptor())
	}
	return slot.Call(recv, args...)
}

func (t *Type) String() string {
	return fmt.Sprintf("%s#%d", t.name, t.id)
}
