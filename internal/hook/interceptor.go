package hook

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/wnxd/microhook/hook"
	"github.com/wnxd/microhook/host"
)

type Interceptor struct {
	rt     *host.Runtime
	opts   hook.Options
	log    zerolog.Logger
	closed atomic.Bool
	watcher
	regMu sync.Mutex
	regs  map[*registration]struct{}
}

func New(rt *host.Runtime, opts ...hook.Option) (hook.Interceptor, error) {
	ic := new(Interceptor)
	if err := ic.Init(rt, opts...); err != nil {
		return nil, err
	}
	return ic, nil
}

func (ic *Interceptor) Init(rt *host.Runtime, opts ...hook.Option) error {
	if rt == nil {
		return fmt.Errorf("%w: nil runtime", hook.ErrArgumentInvalid)
	}
	ic.rt = rt
	ic.opts = hook.NewOptions(opts...)
	ic.log = ic.opts.Logger.With().Str("component", "interceptor").Logger()
	ic.regs = make(map[*registration]struct{})
	return ic.watcher.ctor(rt, ic.opts, ic.log)
}

// Close cancels every registration and watch and uninstalls the hooks this
// interceptor installed.
func (ic *Interceptor) Close() error {
	if ic.closed.Swap(true) {
		return nil
	}
	ic.regMu.Lock()
	regs := make([]*registration, 0, len(ic.regs))
	for reg := range ic.regs {
		regs = append(regs, reg)
	}
	ic.regMu.Unlock()

	var errs []error
	for _, reg := range regs {
		errs = append(errs, reg.Close())
	}
	for _, e := range hooks.snapshot(ic) {
		if _, err := hooks.uninstall(e.Key); err != nil && !errors.Is(err, hook.ErrNotHooked) {
			errs = append(errs, err)
		}
	}
	ic.watcher.dtor()
	return errors.Join(errs...)
}

func (ic *Interceptor) Runtime() *host.Runtime {
	return ic.rt
}

func (ic *Interceptor) Resolve(t *host.Type, sig host.Signature) (hook.Method, error) {
	m, err := resolve(t, sig)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (ic *Interceptor) Install(m hook.Method, fn hook.Func) (hook.Capsule, error) {
	if ic.closed.Load() {
		return nil, hook.ErrClosed
	}
	if fn == nil {
		return nil, hook.ErrHookFuncNil
	}
	slot, key, err := checkMethod(m)
	if err != nil {
		return nil, err
	}
	e, err := hooks.install(ic, key, slot, fn)
	if err != nil {
		ic.log.Debug().Err(err).Str("key", key.String()).Msg("install rejected")
		return nil, err
	}
	ic.log.Info().Str("key", key.String()).Uint64("installed_at", e.at).Msg("hook installed")
	return e.capsule, nil
}

func (ic *Interceptor) Uninstall(m hook.Method) error {
	_, key, err := checkMethod(m)
	if err != nil {
		return err
	}
	if _, err = hooks.uninstall(key); err != nil {
		return err
	}
	ic.log.Info().Str("key", key.String()).Msg("hook uninstalled")
	return nil
}

func (ic *Interceptor) Find(key hook.Key) (hook.Entry, bool) {
	return hooks.find(key)
}

func (ic *Interceptor) State(key hook.Key) hook.State {
	return hooks.state(key)
}

// Entries lists the hooks installed through this interceptor, oldest first.
func (ic *Interceptor) Entries() []hook.Entry {
	return hooks.snapshot(ic)
}

func (ic *Interceptor) Watch(typeName string, callback hook.LoadCallback) (hook.Subscription, error) {
	if ic.closed.Load() {
		return nil, hook.ErrClosed
	}
	s, err := ic.watcher.watch(typeName, callback, ic.opts.OnDuplicate)
	if err != nil {
		return nil, err
	}
	return s, nil
}
