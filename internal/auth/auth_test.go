package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"utter/internal/auth"
)

func TestFromTokens(t *testing.T) {
	require.IsType(t, auth.AllowAll{}, auth.FromTokens(nil))
	require.IsType(t, auth.AllowAll{}, auth.FromTokens([]string{" ", ""}))
	require.IsType(t, &auth.StaticTokens{}, auth.FromTokens([]string{"s3cret"}))
}

func TestStaticTokens(t *testing.T) {
	a := auth.NewStaticTokens([]string{"alpha", " beta "})

	require.NoError(t, a.Authenticate("d1", "alpha"))
	require.NoError(t, a.Authenticate("d1", "beta"))
	require.ErrorIs(t, a.Authenticate("d1", "gamma"), auth.ErrUnauthorized)
	require.ErrorIs(t, a.Authenticate("d1", ""), auth.ErrUnauthorized)
}
