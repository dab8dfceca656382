package hook

import (
	"io"

	"github.com/wnxd/microhook/host"
)

type Interceptor interface {
	io.Closer
	Runtime() *host.Runtime
	Resolver
	Installer
	Watcher
	// Register watches spec.TypeName and installs spec.Hook when it loads.
	Register(spec Spec) (Registration, error)
	// Apply installs spec.Hook on an already loaded type.
	Apply(t *host.Type, spec Spec) (Capsule, error)
}

func New(rt *host.Runtime, opts ...Option) (Interceptor, error) {
	if ctor == nil {
		return nil, ErrNotImplemented
	}
	return ctor(rt, opts...)
}
