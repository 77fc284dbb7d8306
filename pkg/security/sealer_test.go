package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/trackwise-backend/pkg/security"
)

func TestSealerRoundTrip(t *testing.T) {
	sealer, err := security.NewSealer("0123456789abcdef-settings")
	require.NoError(t, err)
	require.NotNil(t, sealer)

	sealed, err := sealer.Seal("sk_live_abcd1234")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, security.SealedPrefix))
	assert.NotContains(t, sealed, "abcd1234")

	again, err := sealer.Seal("sk_live_abcd1234")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk_live_abcd1234", plain)
}

func TestSealerPassesPlaintextThrough(t *testing.T) {
	sealer, err := security.NewSealer("0123456789abcdef-settings")
	require.NoError(t, err)

	plain, err := sealer.Open("legacy-plain-value")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plain-value", plain)

	empty, err := sealer.Seal("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNilSealer(t *testing.T) {
	sealer, err := security.NewSealer("")
	require.NoError(t, err)
	assert.Nil(t, sealer)

	value, err := sealer.Seal("secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", value)

	_, err = sealer.Open(security.SealedPrefix + "AAAA")
	assert.ErrorIs(t, err, security.ErrSealerMissing)
}

func TestSealerRejectsWrongKey(t *testing.T) {
	a, err := security.NewSealer("first-key-0123456789")
	require.NoError(t, err)
	b, err := security.NewSealer("second-key-0123456789")
	require.NoError(t, err)

	sealed, err := a.Seal("pk_live_zzzz")
	require.NoError(t, err)
	_, err = b.Open(sealed)
	assert.Error(t, err)
}
