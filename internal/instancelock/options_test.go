package instancelock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()

	assert.Equal(t, SocketNumberStart, opts.BasePort)
	assert.Equal(t, SocketNumberSpan, opts.PortSpan)
	assert.Equal(t, DefaultForbiddenPorts, opts.ForbiddenPorts)
	require.NotNil(t, opts.Notifier)
}

func TestOptionsOverrides(t *testing.T) {
	opts := Options{
		BasePort:       42000,
		PortSpan:       4,
		ForbiddenPorts: []int{42001},
	}.withDefaults()

	assert.Equal(t, 42000, opts.BasePort)
	assert.Equal(t, 4, opts.PortSpan)
	assert.Equal(t, []int{42001}, opts.ForbiddenPorts)
}

func TestActivateStatusString(t *testing.T) {
	tests := []struct {
		status ActivateStatus
		want   string
	}{
		{Activated, "activated"},
		{NoInstance, "no instance"},
		{CannotActivate, "cannot activate"},
		{ActivateStatus(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func TestNewGeneratesDistinctTokens(t *testing.T) {
	a := New(Options{})
	b := New(Options{})

	require.False(t, a.token.IsEmpty())
	require.False(t, b.token.IsEmpty())
	assert.False(t, a.token.Equal(b.token.String()), "two locks must not share a token")
}
