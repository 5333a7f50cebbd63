package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestGetPrefersEnvironment(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(KeyringService, AnthropicAPIKey, "from-keychain"))
	t.Setenv(AnthropicAPIKey, "  from-env  ")

	v, err := Get(AnthropicAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)
}

func TestGetFallsBackToKeychain(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(KeyringService, NotionAPIKey, "secret_abc"))
	t.Setenv(NotionAPIKey, "")

	v, err := Get(NotionAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "secret_abc", v)
}

func TestGetMissingPointsAtSetCommand(t *testing.T) {
	keyring.MockInit()
	t.Setenv(IMAPPassword, "")

	_, err := Get(IMAPPassword)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "applyflow secrets set IMAP_PASSWORD")
}

func TestGetOptionalSwallowsMissing(t *testing.T) {
	keyring.MockInit()
	t.Setenv(IMAPPassword, "")

	assert.Empty(t, GetOptional(IMAPPassword))

	t.Setenv(IMAPPassword, "app-pw")
	assert.Equal(t, "app-pw", GetOptional(IMAPPassword))
}

func TestSetRejectsBlankInput(t *testing.T) {
	keyring.MockInit()

	assert.Error(t, Set("", "value"))
	assert.Error(t, Set(AnthropicAPIKey, "   "))
}

func TestSetDeleteRoundTrip(t *testing.T) {
	keyring.MockInit()
	t.Setenv(NotionAPIKey, "")

	require.NoError(t, Set(NotionAPIKey, "tok"))
	v, err := Get(NotionAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)

	require.NoError(t, Delete(NotionAPIKey))
	_, err = Get(NotionAPIKey)
	assert.Error(t, err)
}
