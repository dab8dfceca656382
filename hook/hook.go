package hook

import (
	"fmt"
	"io"

	"github.com/wnxd/microhook/host"
)

// Func replaces a method body. orig calls the implementation that was active
// before this hook was installed.
type Func = func(orig Capsule, recv any, args ...any) (any, error)

type LoadCallback = func(t *host.Type)

type State int

const (
	State_Unhooked State = iota
	State_Installing
	State_Hooked
	State_Uninstalling
)

// Key identifies one hook slot: a method on one loaded type.
type Key struct {
	Type     host.TypeID
	TypeName string
	Method   string
}

type Capsule interface {
	Key() Key
	Invoke(recv any, args ...any) (any, error)
}

type Method interface {
	Key() Key
	Type() *host.Type
	Signature() host.Signature
	Slot() *host.Slot
}

type Entry struct {
	Key         Key
	Original    Capsule
	Hook        Func
	InstalledAt uint64
}

type Subscription interface {
	io.Closer
	ID() string
	TypeName() string
	Fired() int
}

type Registration interface {
	io.Closer
	Spec() Spec
	Subscription() Subscription
	Capsule() Capsule
	Err() error
}

type Resolver interface {
	Resolve(t *host.Type, sig host.Signature) (Method, error)
}

type Installer interface {
	Install(m Method, fn Func) (Capsule, error)
	Uninstall(m Method) error
	Find(key Key) (Entry, bool)
	State(key Key) State
	Entries() []Entry
}

type Watcher interface {
	Watch(typeName string, callback LoadCallback) (Subscription, error)
}

func KeyOf(t *host.Type, sig host.Signature) Key {
	return Key{Type: t.ID(), TypeName: t.Name(), Method: sig.Descriptor()}
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d.%s", k.TypeName, k.Type, k.Method)
}

func (s State) String() string {
	switch s {
	case State_Unhooked:
		return "unhooked"
	case State_Installing:
		return "installing"
	case State_Hooked:
		return "hooked"
	case State_Uninstalling:
		return "uninstalling"
	}
	return "unknown"
}
