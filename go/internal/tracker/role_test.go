package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("host")
	require.NoError(t, err)
	assert.Equal(t, RoleHost, r)
	assert.True(t, r.IsPrivilegedWriter())

	r, err = ParseRole("observer")
	require.NoError(t, err)
	assert.False(t, r.IsPrivilegedWriter())

	_, err = ParseRole("gm")
	assert.Error(t, err)
}

func TestFeatureToggle(t *testing.T) {
	tg := NewFeatureToggle(false)
	assert.False(t, tg.Enabled())

	tg.SetEnabled(true)
	assert.True(t, tg.Enabled())
}
