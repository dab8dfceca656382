package hook

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/google/uuid"
	"github.com/modern-go/reflect2"
	"github.com/rs/zerolog"

	"github.com/wnxd/microhook/hook"
	"github.com/wnxd/microhook/host"
)

type subscription struct {
	w        *watcher
	id       string
	typeName string
	callback hook.LoadCallback
	ident    unsafe.Pointer
	fired    atomic.Int32
	closed   atomic.Bool
}

type watcher struct {
	mu      sync.Mutex
	rt      *host.Runtime
	log     zerolog.Logger
	retain  bool
	subs    map[string][]*subscription
	loaded  map[string]bool
	release func() error
}

func (w *watcher) ctor(rt *host.Runtime, opts hook.Options, log zerolog.Logger) error {
	w.rt = rt
	w.log = log
	w.retain = opts.RetainWatches
	w.subs = make(map[string][]*subscription)
	w.loaded = make(map[string]bool)
	h, err := rt.Hook(w.handleEvent, nil)
	if err != nil {
		return err
	}
	w.release = h.Close
	return nil
}

func (w *watcher) dtor() {
	if w.release != nil {
		w.release()
		w.release = nil
	}
	w.mu.Lock()
	for _, subs := range w.subs {
		for _, s := range subs {
			s.closed.Store(true)
		}
	}
	clear(w.subs)
	w.mu.Unlock()
}

// watch registers callback for the next load of typeName. The callback's
// identity is its closure pointer: the same func value registered twice for
// one name is a duplicate, two closures from one literal are not.
func (w *watcher) watch(typeName string, callback hook.LoadCallback, policy hook.DuplicatePolicy) (*subscription, error) {
	if typeName == "" {
		return nil, fmt.Errorf("%w: empty type name", hook.ErrArgumentInvalid)
	}
	if callback == nil {
		return nil, hook.ErrCallbackNil
	}
	ident := reflect2.PtrOf(callback)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loaded[typeName] || w.rt.IsLoaded(typeName) {
		return nil, fmt.Errorf("%w: %s", hook.ErrAlreadyLoaded, typeName)
	}
	for _, s := range w.subs[typeName] {
		if s.ident != ident {
			continue
		}
		if policy == hook.DuplicatePolicy_Ignore {
			return s, nil
		}
		return nil, fmt.Errorf("%w: %s", hook.ErrDuplicateWatch, typeName)
	}
	s := &subscription{
		w:        w,
		id:       uuid.NewString(),
		typeName: typeName,
		callback: callback,
		ident:    ident,
	}
	w.subs[typeName] = append(w.subs[typeName], s)
	w.log.Debug().Str("type", typeName).Str("subscription", s.id).Msg("watch registered")
	return s, nil
}

func (w *watcher) remove(s *subscription) {
	w.mu.Lock()
	subs := slices.DeleteFunc(w.subs[s.typeName], func(o *subscription) bool { return o == s })
	if len(subs) == 0 {
		delete(w.subs, s.typeName)
	} else {
		w.subs[s.typeName] = subs
	}
	w.mu.Unlock()
}

func (w *watcher) handleEvent(ev host.Event, t *host.Type, _ any) {
	switch ev {
	case host.EVENT_LOAD:
		w.mu.Lock()
		w.loaded[t.Name()] = true
		subs := slices.Clone(w.subs[t.Name()])
		if !w.retain {
			delete(w.subs, t.Name())
			for _, s := range subs {
				s.closed.Store(true)
			}
		}
		w.mu.Unlock()
		for _, s := range subs {
			w.fire(s, t)
		}
	case host.EVENT_UNLOAD:
		w.mu.Lock()
		delete(w.loaded, t.Name())
		w.mu.Unlock()
	}
}

func (w *watcher) fire(s *subscription, t *host.Type) {
	if w.retain && s.closed.Load() {
		return
	}
	defer func() {
		if v := recover(); v != nil {
			w.log.Error().Str("type", t.Name()).Str("subscription", s.id).Interface("panic", v).Msg("load callback panicked")
		}
	}()
	s.fired.Add(1)
	s.callback(t)
}

func (s *subscription) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.w.remove(s)
	return nil
}

func (s *subscription) ID() string {
	return s.id
}

func (s *subscription) TypeName() string {
	return s.typeName
}

func (s *subscription) Fired() int {
	return int(s.fired.Load())
}
