package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokensFromFragment(t *testing.T) {
	pair := ExtractTokens("com.jbpagrawal.sabha://auth/callback#access_token=abc&refresh_token=xyz")

	require.NotNil(t, pair)
	assert.Equal(t, "abc", pair.AccessToken)
	assert.Equal(t, "xyz", pair.RefreshToken)
}

func TestExtractTokensFromQuery(t *testing.T) {
	pair := ExtractTokens("com.jbpagrawal.sabha://auth/callback?access_token=abc&refresh_token=xyz")

	require.NotNil(t, pair)
	assert.Equal(t, "abc", pair.AccessToken)
	assert.Equal(t, "xyz", pair.RefreshToken)
}

func TestFragmentWinsOverQuery(t *testing.T) {
	pair := ExtractTokens("app://cb?access_token=fromquery#access_token=fromfrag&refresh_token=r")

	require.NotNil(t, pair)
	assert.Equal(t, "fromfrag", pair.AccessToken)
}

func TestPercentDecoding(t *testing.T) {
	pair := ExtractTokens("app://cb#access_token=a%2Bb&refresh_token=r%20t")

	require.NotNil(t, pair)
	assert.Equal(t, "a+b", pair.AccessToken)
	assert.Equal(t, "r t", pair.RefreshToken)
}

func TestBadEscapeFallsBackToRawValue(t *testing.T) {
	// %zz is not a valid escape; the raw value must survive for that key.
	pair := ExtractTokens("app://cb#access_token=a%zzb&refresh_token=ok")

	require.NotNil(t, pair)
	assert.Equal(t, "a%zzb", pair.AccessToken)
	assert.Equal(t, "ok", pair.RefreshToken)
}

func TestNoAccessTokenReturnsNil(t *testing.T) {
	assert.Nil(t, ExtractTokens("app://cb#refresh_token=xyz"))
	assert.Nil(t, ExtractTokens("app://cb"))
	assert.Nil(t, ExtractTokens(""))
}

func TestEmptyPairsIgnored(t *testing.T) {
	pair := ExtractTokens("app://cb#&access_token=abc&&refresh_token=xyz&")

	require.NotNil(t, pair)
	assert.Equal(t, "abc", pair.AccessToken)
}

func TestAuthCode(t *testing.T) {
	assert.Equal(t, "c123", AuthCode("app://cb?code=c123"))
	assert.Equal(t, "", AuthCode("app://cb#access_token=abc"))
}
