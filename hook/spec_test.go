package hook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/microhook/host"
)

func passThrough(orig Capsule, recv any, args ...any) (any, error) {
	return orig.Invoke(recv, args...)
}

func TestDecodeSpec(t *testing.T) {
	t.Run("decodes descriptor and policy", func(t *testing.T) {
		spec, err := DecodeSpec(map[string]any{
			"type_name":    "Resources",
			"method":       "getColor(int)",
			"on_duplicate": "ignore",
		}, passThrough)
		require.NoError(t, err)

		assert.Equal(t, "Resources", spec.TypeName)
		assert.True(t, host.NewSignature("getColor", host.KIND_INT).Equal(spec.Method))
		assert.Equal(t, DuplicatePolicy_Ignore, spec.OnDuplicate)
		assert.NotNil(t, spec.Hook)
	})

	t.Run("defaults to fail", func(t *testing.T) {
		spec, err := DecodeSpec(map[string]any{
			"type_name": "Resources",
			"method":    "getColor(I)",
		}, passThrough)
		require.NoError(t, err)
		assert.Equal(t, DuplicatePolicy_Fail, spec.OnDuplicate)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := DecodeSpec(map[string]any{
			"type_name": "Resources",
			"method":    "getColor(I)",
			"priority":  3,
		}, passThrough)
		require.Error(t, err)
	})

	t.Run("rejects bad signature", func(t *testing.T) {
		_, err := DecodeSpec(map[string]any{
			"type_name": "Resources",
			"method":    "getColor",
		}, passThrough)
		require.Error(t, err)
	})

	t.Run("rejects bad policy", func(t *testing.T) {
		_, err := DecodeSpec(map[string]any{
			"type_name":    "Resources",
			"method":       "getColor(I)",
			"on_duplicate": "replace",
		}, passThrough)
		require.Error(t, err)
	})

	t.Run("requires a hook body", func(t *testing.T) {
		_, err := DecodeSpec(map[string]any{
			"type_name": "Resources",
			"method":    "getColor(I)",
		}, nil)
		require.ErrorIs(t, err, ErrHookFuncNil)
	})

	t.Run("requires a type name", func(t *testing.T) {
		_, err := DecodeSpec(map[string]any{"method": "getColor(I)"}, passThrough)
		require.ErrorIs(t, err, ErrArgumentInvalid)
	})
}

func TestMaskBits(t *testing.T) {
	assert.Equal(t, 0x0011ff33, MaskBits(0x00112233, 0x0000ff00, 0x0000ff00))
	assert.Equal(t, 0x00ff0033, MaskBits(0x00112233, 0x0000ff00, 0x00ff0000))
	assert.Equal(t, uint8(0xf0), MaskBits[uint8](0xff, 0x0f, 0x00))
}

func TestOptions(t *testing.T) {
	o := NewOptions(WithDuplicateWatch(DuplicatePolicy_Ignore), WithRetainWatches(false), nil)
	assert.Equal(t, DuplicatePolicy_Ignore, o.OnDuplicate)
	assert.False(t, o.RetainWatches)

	d := DefaultOptions()
	assert.Equal(t, DuplicatePolicy_Fail, d.OnDuplicate)
	assert.True(t, d.RetainWatches)

	var p DuplicatePolicy
	require.NoError(t, p.UnmarshalText([]byte("Ignore")))
	assert.Equal(t, DuplicatePolicy_Ignore, p)
	require.ErrorIs(t, p.UnmarshalText([]byte("replace")), ErrArgumentInvalid)
}

func TestPanicError(t *testing.T) {
	key := Key{Type: 7, TypeName: "Resources", Method: "getColor(I)"}
	err := NewPanicError(key, ErrNotHooked)
	assert.ErrorIs(t, err, ErrNotHooked)
	assert.Equal(t, key, err.Key())
	assert.Contains(t, err.Error(), "Resources#7.getColor(I)")

	assert.Nil(t, NewPanicError(key, "boom").Unwrap())
}
