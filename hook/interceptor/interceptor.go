package interceptor

import (
	"github.com/wnxd/microhook/hook"
	"github.com/wnxd/microhook/host"
	internal "github.com/wnxd/microhook/internal/hook"
)

var _ = hook.RegisterCtor(internal.New)

func New(rt *host.Runtime, opts ...hook.Option) (hook.Interceptor, error) {
	return internal.New(rt, opts...)
}
