package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestPasswords(t *testing.T) {
	keyring.MockInit()

	got, err := LookupPassword("prod")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, StorePassword("prod", "s3cret"))
	got, err = LookupPassword("prod")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	require.NoError(t, DeletePassword("prod"))
	require.NoError(t, DeletePassword("prod"))
	got, err = LookupPassword("prod")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProfilePasswordStash(t *testing.T) {
	keyring.MockInit()

	p := Profile{Name: "prod", Username: "alice", Password: "s3cret"}
	require.NoError(t, p.StashPassword())
	assert.Empty(t, p.Password)

	require.NoError(t, p.ResolvePassword())
	assert.Equal(t, "s3cret", p.Password)

	// An explicit password wins over the keyring.
	explicit := Profile{Name: "prod", Username: "alice", Password: "override"}
	require.NoError(t, explicit.ResolvePassword())
	assert.Equal(t, "override", explicit.Password)

	// Without a username no lookup is made.
	anon := Profile{Name: "prod"}
	require.NoError(t, anon.ResolvePassword())
	assert.Empty(t, anon.Password)
}
