package hook

import "github.com/wnxd/microhook/host"

type Ctor func(*host.Runtime, ...Option) (Interceptor, error)

var ctor Ctor

// RegisterCtor sets the implementation behind New. Only the first call wins.
func RegisterCtor(c Ctor) bool {
	if ctor != nil || c == nil {
		return false
	}
	ctor = c
	return true
}
