package hook

import (
	"fmt"

	"github.com/modern-go/reflect2"

	"github.com/wnxd/microhook/hook"
	"github.com/wnxd/microhook/host"
)

type method struct {
	typ  *host.Type
	slot *host.Slot
	key  hook.Key
}

// resolve finds the slot whose descriptor matches sig exactly.
func resolve(t *host.Type, sig host.Signature) (*method, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", hook.ErrArgumentInvalid)
	}
	slot, ok := t.Slot(sig.Descriptor())
	if !ok || !sig.Valid() {
		return nil, fmt.Errorf("%w: %s.%s", hook.ErrSymbolNotFound, t.Name(), sig.Descriptor())
	}
	return &method{typ: t, slot: slot, key: hook.KeyOf(t, slot.Signature())}, nil
}

func checkMethod(m hook.Method) (*host.Slot, hook.Key, error) {
	if m == nil || reflect2.IsNil(m) {
		return nil, hook.Key{}, fmt.Errorf("%w: nil method", hook.ErrArgumentInvalid)
	}
	slot, typ := m.Slot(), m.Type()
	if slot == nil || typ == nil || slot.Owner() != typ {
		return nil, hook.Key{}, fmt.Errorf("%w: method %s", hook.ErrArgumentInvalid, m.Key())
	}
	key := hook.KeyOf(typ, slot.Signature())
	if key != m.Key() {
		return nil, hook.Key{}, fmt.Errorf("%w: method key %s does not match %s", hook.ErrArgumentInvalid, m.Key(), key)
	}
	return slot, key, nil
}

func (m *method) Key() hook.Key {
	return m.key
}

func (m *method) Type() *host.Type {
	return m.typ
}

func (m *method) Signature() host.Signature {
	return m.slot.Signature()
}

func (m *method) Slot() *host.Slot {
	return m.slot
}
