package interceptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/microhook/hook"
	"github.com/wnxd/microhook/host"
)

func TestNew(t *testing.T) {
	rt := host.New()
	require.NoError(t, rt.Declare(host.TypeDecl{
		Name: "Resources",
		Methods: []host.MethodDecl{
			{Name: "getColor", Params: []host.Kind{host.KIND_INT}, Impl: func(_ any, args ...any) (any, error) {
				return args[0], nil
			}},
		},
	}))

	ic, err := hook.New(rt)
	require.NoError(t, err)
	defer ic.Close()
	assert.Same(t, rt, ic.Runtime())

	spec, err := hook.DecodeSpec(map[string]any{
		"type_name": "Resources",
		"method":    "getColor(int)",
	}, func(orig hook.Capsule, recv any, args ...any) (any, error) {
		ret, err := orig.Invoke(recv, args...)
		if err != nil {
			return nil, err
		}
		return hook.MaskBits(ret.(int), 0x0000ff00, 0x0000ff00), nil
	})
	require.NoError(t, err)
	reg, err := ic.Register(spec)
	require.NoError(t, err)

	typ, err := rt.Load("Resources")
	require.NoError(t, err)
	require.NoError(t, reg.Err())
	assert.Equal(t, 1, reg.Subscription().Fired())

	ret, err := typ.Invoke(nil, "getColor", 0x00112233)
	require.NoError(t, err)
	assert.Equal(t, 0x0011ff33, ret)

	other, err := New(rt)
	require.NoError(t, err)
	defer other.Close()
	assert.False(t, hook.RegisterCtor(New))
}
