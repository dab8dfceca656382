package host

import (
	"fmt"
	"slices"
	"strings"
)

// Signature identifies a method by name and the exact ordered kinds of its
// parameters. Two signatures with the same descriptor are the same method.
type Signature struct {
	Name   string
	Params []Kind
}

func NewSignature(name string, params ...Kind) Signature {
	return Signature{Name: name, Params: params}
}

// ParseSignature accepts the compact form "getColor(I)" as well as kind
// names, "getColor(int)" or "put(int, long)".
func ParseSignature(s string) (Signature, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return Signature{}, fmt.Errorf("%w: signature %q", ErrArgumentInvalid, s)
	}
	sig := Signature{Name: strings.TrimSpace(s[:open])}
	body := strings.TrimSpace(s[open+1 : len(s)-1])
	if body == "" {
		return sig, nil
	}
	if !strings.Contains(body, ",") && isCompact(body) {
		for i := 0; i < len(body); i++ {
			sig.Params = append(sig.Params, Kind(body[i]))
		}
		return sig, nil
	}
	for _, part := range strings.Split(body, ",") {
		k, ok := ParseKind(strings.TrimSpace(part))
		if !ok {
			return Signature{}, fmt.Errorf("%w: parameter %q in %q", ErrArgumentInvalid, part, s)
		}
		sig.Params = append(sig.Params, k)
	}
	return sig, nil
}

func isCompact(body string) bool {
	for i := 0; i < len(body); i++ {
		if !Kind(body[i]).Valid() {
			return false
		}
	}
	return true
}

func (sig Signature) Valid() bool {
	if sig.Name == "" {
		return false
	}
	for _, k := range sig.Params {
		if !k.Valid() {
			return false
		}
	}
	return true
}

func (sig Signature) Equal(other Signature) bool {
	return sig.Name == other.Name && slices.Equal(sig.Params, other.Params)
}

// Descriptor renders the signature in compact form, e.g. "getColor(I)".
func (sig Signature) Descriptor() string {
	var b strings.Builder
	b.Grow(len(sig.Name) + len(sig.Params) + 2)
	b.WriteString(sig.Name)
	b.WriteByte('(')
	for _, k := range sig.Params {
		b.WriteByte(byte(k))
	}
	b.WriteByte(')')
	return b.String()
}

func (sig Signature) String() string {
	names := make([]string, len(sig.Params))
	for i, k := range sig.Params {
		names[i] = k.String()
	}
	return sig.Name + "(" + strings.Join(names, ", ") + ")"
}

func (sig Signature) MarshalText() ([]byte, error) {
	return []byte(sig.Descriptor()), nil
}

func (sig *Signature) UnmarshalText(text []byte) error {
	parsed, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*sig = parsed
	return nil
}

// signatureOf builds the signature a call with args would need.
func signatureOf(name string, args []any) Signature {
	params := make([]Kind, len(args))
	for i, arg := range args {
		params[i] = KindOf(arg)
	}
	return Signature{Name: name, Params: params}
}
