package hook

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/wnxd/microhook/host"
)

// Spec describes one hook registration.
type Spec struct {
	TypeName    string          `mapstructure:"type_name"`
	Method      host.Signature  `mapstructure:"method"`
	Hook        Func            `mapstructure:"-"`
	OnDuplicate DuplicatePolicy `mapstructure:"on_duplicate"`
}

func (s *Spec) Validate() error {
	if s.TypeName == "" {
		return fmt.Errorf("%w: type name is required", ErrArgumentInvalid)
	}
	if !s.Method.Valid() {
		return fmt.Errorf("%w: method signature %q is invalid", ErrArgumentInvalid, s.Method.Descriptor())
	}
	if s.Hook == nil {
		return ErrHookFuncNil
	}
	if s.OnDuplicate != DuplicatePolicy_Fail && s.OnDuplicate != DuplicatePolicy_Ignore {
		return fmt.Errorf("%w: duplicate policy %d", ErrArgumentInvalid, s.OnDuplicate)
	}
	return nil
}

// DecodeSpec builds a Spec from untyped configuration, e.g.
//
//	{"type_name": "Resources", "method": "getColor(int)", "on_duplicate": "ignore"}
//
// The hook body cannot come from configuration and is passed separately.
func DecodeSpec(raw map[string]any, fn Func) (Spec, error) {
	var spec Spec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.TextUnmarshallerHookFunc(),
		ErrorUnused: true,
		Result:      &spec,
	})
	if err != nil {
		return Spec{}, err
	}
	if err = decoder.Decode(raw); err != nil {
		return Spec{}, fmt.Errorf("decode hook spec: %w", err)
	}
	spec.Hook = fn
	if err = spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}
