package hook

import (
	"sync/atomic"

	"github.com/wnxd/microhook/hook"
	"github.com/wnxd/microhook/host"
)

// capsule calls the code that was in the slot when its hook was installed.
// It never goes through the slot, so a hook calling it cannot re-enter
// itself.
type capsule struct {
	key  hook.Key
	code *host.Code
}

// call is the capsule handed to one invocation of a hook body. It records
// the last panic that escaped the original implementation.
type call struct {
	*capsule
	escaped atomic.Pointer[panicValue]
}

type panicValue struct {
	v any
}

// is reports whether v is the recorded panic value. Values that cannot be
// compared never match.
func (e *panicValue) is(v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return e.v == v
}

func (c *capsule) Key() hook.Key {
	return c.key
}

func (c *capsule) Invoke(recv any, args ...any) (any, error) {
	return c.code.Call(recv, args...)
}

func (c *call) Invoke(recv any, args ...any) (any, error) {
	defer func() {
		if v := recover(); v != nil {
			c.escaped.Store(&panicValue{v: v})
			panic(v)
		}
	}()
	return c.capsule.Invoke(recv, args...)
}

// dispatch builds the code installed in a hooked slot. Panics from the hook
// body become *hook.PanicError; panics from the original pass through, even
// when the hook body lets them propagate.
func dispatch(key hook.Key, fn hook.Func, orig *capsule) *host.Code {
	return host.NewCode(func(recv any, args ...any) (ret any, err error) {
		c := &call{capsule: orig}
		defer func() {
			if v := recover(); v != nil {
				if e := c.escaped.Load(); e != nil && e.is(v) {
					panic(v)
				}
				ret, err = nil, hook.NewPanicError(key, v)
			}
		}()
		return fn(c, recv, args...)
	})
}
