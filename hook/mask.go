package hook

import "golang.org/x/exp/constraints"

// MaskBits clears the bits in off, then sets the bits in on.
func MaskBits[I constraints.Integer](v, off, on I) I {
	return v&^off | on
}
