package hook

import (
	"fmt"
	"slices"
	"sync"

	"github.com/wnxd/microhook/hook"
	"github.com/wnxd/microhook/host"
)

type entry struct {
	key     hook.Key
	slot    *host.Slot
	capsule *capsule
	code    *host.Code
	fn      hook.Func
	at      uint64
	owner   *Interceptor
	state   hook.State
}

// registry serializes every install, uninstall and lookup behind one mutex.
// The Installing and Uninstalling states only exist while mu is held.
type registry struct {
	mu      sync.Mutex
	clock   uint64
	entries map[hook.Key]*entry
}

// hooks is the process-wide table. It starts empty and is only changed by
// install and uninstall.
var hooks = newRegistry()

func newRegistry() *registry {
	return &registry{entries: make(map[hook.Key]*entry)}
}

func (r *registry) install(owner *Interceptor, key hook.Key, slot *host.Slot, fn hook.Func) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; ok {
		return nil, fmt.Errorf("%w: %s", hook.ErrAlreadyHooked, key)
	}
	e := &entry{
		key:   key,
		slot:  slot,
		fn:    fn,
		owner: owner,
		state: hook.State_Installing,
	}
	e.capsule = &capsule{key: key, code: slot.Load()}
	e.code = dispatch(key, fn, e.capsule)
	if !slot.CompareAndSwap(e.capsule.code, e.code) {
		return nil, fmt.Errorf("%w: %s", hook.ErrSlotChanged, key)
	}
	r.clock++
	e.at = r.clock
	e.state = hook.State_Hooked
	r.entries[key] = e
	return e, nil
}

func (r *registry) uninstall(key hook.Key) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", hook.ErrNotHooked, key)
	}
	e.state = hook.State_Uninstalling
	if !e.slot.CompareAndSwap(e.code, e.capsule.code) {
		e.state = hook.State_Hooked
		return nil, fmt.Errorf("%w: %s", hook.ErrSlotChanged, key)
	}
	delete(r.entries, key)
	e.state = hook.State_Unhooked
	return e, nil
}

func (r *registry) find(key hook.Key) (hook.Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return hook.Entry{}, false
	}
	return e.export(), true
}

func (r *registry) state(key hook.Key) hook.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		return e.state
	}
	return hook.State_Unhooked
}

// snapshot returns the entries owned by owner, oldest first.
func (r *registry) snapshot(owner *Interceptor) []hook.Entry {
	r.mu.Lock()
	list := make([]hook.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.owner == owner {
			list = append(list, e.export())
		}
	}
	r.mu.Unlock()
	slices.SortFunc(list, func(a, b hook.Entry) int {
		switch {
		case a.InstalledAt < b.InstalledAt:
			return -1
		case a.InstalledAt > b.InstalledAt:
			return 1
		}
		return 0
	})
	return list
}

func (e *entry) export() hook.Entry {
	return hook.Entry{
		Key:         e.key,
		Original:    e.capsule,
		Hook:        e.fn,
		InstalledAt: e.at,
	}
}
