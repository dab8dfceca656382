package host

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

type Event int

const (
	EVENT_LOAD Event = iota + 1
	EVENT_UNLOAD
)

type Callback = func(ev Event, t *Type, data any)

type Hook interface {
	io.Closer
}

type MethodDecl struct {
	Name   string
	Params []Kind
	Impl   Impl
}

type TypeDecl struct {
	Name    string
	Methods []MethodDecl
}

// Runtime is a host that declares types, loads them on demand and reports
// load and unload events to its hooks.
type Runtime struct {
	mu      sync.Mutex
	decls   map[string]TypeDecl
	types   map[string]*Type
	loading map[string]chan struct{}
	hooks   sync.Map
}

type hookHandler struct {
	rt       *Runtime
	callback Callback
	data     any
}

var typeID atomic.Uint64

func New() *Runtime {
	return &Runtime{
		decls:   make(map[string]TypeDecl),
		types:   make(map[string]*Type),
		loading: make(map[string]chan struct{}),
	}
}

func (rt *Runtime) Declare(decl TypeDecl) error {
	if decl.Name == "" {
		return fmt.Errorf("%w: empty type name", ErrArgumentInvalid)
	}
	seen := make(map[string]struct{}, len(decl.Methods))
	for _, m := range decl.Methods {
		sig := Signature{Name: m.Name, Params: m.Params}
		if !sig.Valid() || m.Impl == nil {
			return fmt.Errorf("%w: method %s of %s", ErrArgumentInvalid, sig.Descriptor(), decl.Name)
		}
		desc := sig.Descriptor()
		if _, ok := seen[desc]; ok {
			return fmt.Errorf("%w: method %s declared twice on %s", ErrArgumentInvalid, desc, decl.Name)
		}
		seen[desc] = struct{}{}
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, ok := rt.decls[decl.Name]; ok {
		return fmt.Errorf("%w: %s", ErrTypeExists, decl.Name)
	}
	decl.Methods = slices.Clone(decl.Methods)
	rt.decls[decl.Name] = decl
	return nil
}

// Load returns the loaded type, loading it first if needed. Load hooks run
// on the calling goroutine before the type is visible to anyone else;
// concurrent loads of the same name wait for them. A hook must not load the
// type it is being notified about.
func (rt *Runtime) Load(name string) (*Type, error) {
	for {
		rt.mu.Lock()
		if t, ok := rt.types[name]; ok {
			rt.mu.Unlock()
			return t, nil
		}
		if ch, ok := rt.loading[name]; ok {
			rt.mu.Unlock()
			<-ch
			continue
		}
		decl, ok := rt.decls[name]
		if !ok {
			rt.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrTypeNotDeclared, name)
		}
		ch := make(chan struct{})
		rt.loading[name] = ch
		rt.mu.Unlock()
		return rt.initType(decl, ch), nil
	}
}

func (rt *Runtime) initType(decl TypeDecl, ch chan struct{}) (t *Type) {
	t = newType(decl)
	defer func() {
		rt.mu.Lock()
		rt.types[decl.Name] = t
		delete(rt.loading, decl.Name)
		rt.mu.Unlock()
		close(ch)
	}()
	rt.emit(EVENT_LOAD, t)
	return t
}

func (rt *Runtime) Unload(name string) error {
	rt.mu.Lock()
	t, ok := rt.types[name]
	if ok {
		delete(rt.types, name)
	}
	rt.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTypeNotLoaded, name)
	}
	rt.emit(EVENT_UNLOAD, t)
	return nil
}

func (rt *Runtime) IsLoaded(name string) bool {
	rt.mu.Lock()
	_, ok := rt.types[name]
	rt.mu.Unlock()
	return ok
}

func (rt *Runtime) FindType(name string) (*Type, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if t, ok := rt.types[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTypeNotLoaded, name)
}

func (rt *Runtime) Types() []*Type {
	rt.mu.Lock()
	types := make([]*Type, 0, len(rt.types))
	for _, t := range rt.types {
		types = append(types, t)
	}
	rt.mu.Unlock()
	slices.SortFunc(types, func(a, b *Type) int { return strings.Compare(a.name, b.name) })
	return types
}

func (rt *Runtime) Hook(callback Callback, data any) (Hook, error) {
	if callback == nil {
		return nil, fmt.Errorf("%w: nil callback", ErrArgumentInvalid)
	}
	handler := &hookHandler{rt: rt, callback: callback, data: data}
	rt.hooks.Store(handler, struct{}{})
	return handler, nil
}

func (rt *Runtime) emit(ev Event, t *Type) {
	for hook := range rt.hooks.Range {
		handler := hook.(*hookHandler)
		handler.callback(ev, t, handler.data)
	}
}

func (h *hookHandler) Close() error {
	h.rt.hooks.Delete(h)
	return nil
}

func newType(decl TypeDecl) *Type {
	t := &Type{
		id:    TypeID(typeID.Add(1)),
		name:  decl.Name,
		slots: make(map[string]*Slot, len(decl.Methods)),
		order: make([]*Slot, 0, len(decl.Methods)),
	}
	for _, m := range decl.Methods {
		slot := &Slot{sig: Signature{Name: m.Name, Params: slices.Clone(m.Params)}, owner: t}
		slot.code.Store(NewCode(m.Impl))
		t.slots[slot.sig.Descriptor()] = slot
		t.order = append(t.order, slot)
	}
	return t
}
