package hook

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

type DuplicatePolicy int

const (
	DuplicatePolicy_Fail DuplicatePolicy = iota
	DuplicatePolicy_Ignore
)

type Options struct {
	Logger        zerolog.Logger
	OnDuplicate   DuplicatePolicy
	RetainWatches bool
}

type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		Logger:        zerolog.Nop(),
		OnDuplicate:   DuplicatePolicy_Fail,
		RetainWatches: true,
	}
}

func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithDuplicateWatch sets what Watch does with a (type name, callback) pair
// that is already registered.
func WithDuplicateWatch(policy DuplicatePolicy) Option {
	return func(o *Options) {
		o.OnDuplicate = policy
	}
}

// WithRetainWatches keeps subscriptions after they fire so they fire again
// when the type is unloaded and loaded again.
func WithRetainWatches(retain bool) Option {
	return func(o *Options) {
		o.RetainWatches = retain
	}
}

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicatePolicy_Fail:
		return "fail"
	case DuplicatePolicy_Ignore:
		return "ignore"
	}
	return "unknown"
}

func (p DuplicatePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *DuplicatePolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "fail":
		*p = DuplicatePolicy_Fail
	case "ignore":
		*p = DuplicatePolicy_Ignore
	default:
		return fmt.Errorf("%w: duplicate policy %q", ErrArgumentInvalid, text)
	}
	return nil
}
