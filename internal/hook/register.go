package hook

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wnxd/microhook/hook"
	"github.com/wnxd/microhook/host"
)

type registration struct {
	ic      *Interceptor
	spec    hook.Spec
	sub     *subscription
	mu      sync.Mutex
	capsule hook.Capsule
	methods []hook.Method
	err     error
	closed  bool
}

func (ic *Interceptor) Register(spec hook.Spec) (hook.Registration, error) {
	if ic.closed.Load() {
		return nil, hook.ErrClosed
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	reg := &registration{ic: ic, spec: spec}
	sub, err := ic.watcher.watch(spec.TypeName, reg.handleLoad, spec.OnDuplicate)
	if err != nil {
		return nil, err
	}
	reg.sub = sub
	ic.regMu.Lock()
	ic.regs[reg] = struct{}{}
	ic.regMu.Unlock()
	return reg, nil
}

func (ic *Interceptor) Apply(t *host.Type, spec hook.Spec) (hook.Capsule, error) {
	c, _, err := ic.apply(t, spec)
	return c, err
}

// apply resolves and installs spec on t. The returned method is nil when an
// existing hook was adopted under DuplicatePolicy_Ignore.
func (ic *Interceptor) apply(t *host.Type, spec hook.Spec) (hook.Capsule, hook.Method, error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}
	if t == nil || t.Name() != spec.TypeName {
		return nil, nil, fmt.Errorf("%w: type does not match %s", hook.ErrArgumentInvalid, spec.TypeName)
	}
	m, err := ic.Resolve(t, spec.Method)
	if err != nil {
		return nil, nil, err
	}
	c, err := ic.Install(m, spec.Hook)
	if errors.Is(err, hook.ErrAlreadyHooked) && spec.OnDuplicate == hook.DuplicatePolicy_Ignore {
		if e, ok := hooks.find(m.Key()); ok {
			ic.log.Debug().Str("key", m.Key().String()).Msg("already hooked, keeping existing hook")
			return e.Original, nil, nil
		}
	}
	if err != nil {
		return nil, nil, err
	}
	return c, m, nil
}

func (reg *registration) handleLoad(t *host.Type) {
	c, m, err := reg.ic.apply(t, reg.spec)
	reg.mu.Lock()
	if reg.closed {
		reg.mu.Unlock()
		if m != nil {
			reg.ic.Uninstall(m)
		}
		return
	}
	reg.capsule, reg.err = c, err
	if m != nil {
		reg.methods = append(reg.methods, m)
	}
	reg.mu.Unlock()
	if err != nil {
		reg.ic.log.Error().Err(err).Str("type", t.Name()).Str("method", reg.spec.Method.Descriptor()).Msg("hook registration failed")
	}
}

// Close cancels the watch and uninstalls every hook this registration put in.
func (reg *registration) Close() error {
	reg.sub.Close()
	reg.mu.Lock()
	reg.closed = true
	methods := reg.methods
	reg.methods = nil
	reg.mu.Unlock()

	var errs []error
	for _, m := range methods {
		if err := reg.ic.Uninstall(m); err != nil && !errors.Is(err, hook.ErrNotHooked) {
			errs = append(errs, err)
		}
	}
	reg.ic.regMu.Lock()
	delete(reg.ic.regs, reg)
	reg.ic.regMu.Unlock()
	return errors.Join(errs...)
}

func (reg *registration) Spec() hook.Spec {
	return reg.spec
}

func (reg *registration) Subscription() hook.Subscription {
	return reg.sub
}

func (reg *registration) Capsule() hook.Capsule {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.capsule
}

func (reg *registration) Err() error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.err
}
