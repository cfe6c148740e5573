package momento

import (
	"encoding/base64"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAPIKeyV2(t *testing.T) {
	key := testV2Key(t)

	creds, err := FromAPIKeyV2(key, testEndpoint)
	require.NoError(t, err)

	assert.Equal(t, key, creds.AuthToken())
	assert.Equal(t, "cache."+testEndpoint, creds.CacheEndpoint())
	assert.Equal(t, "control."+testEndpoint, creds.ControlEndpoint())
	assert.Equal(t, "token."+testEndpoint, creds.TokenEndpoint())
	assert.Equal(t, "api.cache."+testEndpoint, creds.CacheHTTPEndpoint())
	assert.Equal(t, EndpointSecurityTLS, creds.EndpointSecurity())
}

func TestFromAPIKeyV2Invalid(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		endpoint string
	}{
		{"empty key", "", testEndpoint},
		{"empty endpoint", testV2Key(t), ""},
		{"legacy key", testLegacyKey(t), testEndpoint},
		{"garbage", "not-a-key", testEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromAPIKeyV2(tt.key, tt.endpoint)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestFromEnvVarV2(t *testing.T) {
	t.Setenv("TEST_MOMENTO_KEY", testV2Key(t))
	t.Setenv("TEST_MOMENTO_ENDPOINT", testEndpoint)

	creds, err := FromEnvVarV2("TEST_MOMENTO_KEY", "TEST_MOMENTO_ENDPOINT")
	require.NoError(t, err)
	assert.Equal(t, "cache."+testEndpoint, creds.CacheEndpoint())

	_, err = FromEnvVarV2("TEST_MOMENTO_UNSET", "TEST_MOMENTO_ENDPOINT")
	assert.ErrorContains(t, err, "TEST_MOMENTO_UNSET")

	_, err = FromEnvVarV2("TEST_MOMENTO_KEY", "TEST_MOMENTO_UNSET")
	assert.ErrorContains(t, err, "TEST_MOMENTO_UNSET")

	t.Setenv("TEST_MOMENTO_KEY", testLegacyKey(t))
	_, err = FromEnvVarV2("TEST_MOMENTO_KEY", "TEST_MOMENTO_ENDPOINT")
	assert.ErrorContains(t, err, "invalid v2 API key")
}

func TestFromEnvVarLegacy(t *testing.T) {
	t.Setenv("TEST_MOMENTO_KEY", testLegacyKey(t))

	creds, err := FromEnvVar("TEST_MOMENTO_KEY")
	require.NoError(t, err)
	assert.Equal(t, "legacy-secret", creds.AuthToken())
	assert.Equal(t, "cache."+testEndpoint, creds.CacheEndpoint())

	t.Setenv("TEST_MOMENTO_KEY", testV2Key(t))
	_, err = FromEnvVar("TEST_MOMENTO_KEY")
	assert.ErrorContains(t, err, "FromEnvVarV2")
}

func TestFromStringEncodings(t *testing.T) {
	payload := []byte(`{"endpoint":"` + testEndpoint + `","api_key":"k"}`)

	for name, enc := range map[string]*base64.Encoding{
		"std":     base64.StdEncoding,
		"url":     base64.URLEncoding,
		"raw url": base64.RawURLEncoding,
	} {
		t.Run(name, func(t *testing.T) {
			creds, err := FromString(enc.EncodeToString(payload))
			require.NoError(t, err)
			assert.Equal(t, "k", creds.AuthToken())
			assert.Equal(t, "control."+testEndpoint, creds.ControlEndpoint())
		})
	}
}

func TestFromStringLegacyJWT(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"c":  "cache.cell-1.example.com",
		"cp": "control.cell-1.example.com",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	creds, err := FromString(token)
	require.NoError(t, err)
	assert.Equal(t, token, creds.AuthToken())
	assert.Equal(t, "cache.cell-1.example.com", creds.CacheEndpoint())
	assert.Equal(t, "control.cell-1.example.com", creds.ControlEndpoint())
	assert.Equal(t, "token.cell-1.example.com", creds.TokenEndpoint())
}

func TestFromStringInvalid(t *testing.T) {
	_, err := FromString("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = FromString(base64.StdEncoding.EncodeToString([]byte(`{"endpoint":""}`)))
	assert.ErrorContains(t, err, "Could not parse token")

	_, err = FromString("%%%")
	assert.ErrorContains(t, err, "Could not parse token")
}

func TestFromDisposableToken(t *testing.T) {
	creds, err := FromDisposableToken(testLegacyKey(t))
	require.NoError(t, err)
	assert.Equal(t, "legacy-secret", creds.AuthToken())

	_, err = FromDisposableToken(testV2Key(t))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEndpointOverrides(t *testing.T) {
	base, err := FromAPIKeyV2(testV2Key(t), testEndpoint)
	require.NoError(t, err)

	t.Run("base endpoint", func(t *testing.T) {
		creds := base.WithBaseEndpoint("other.example.com")
		assert.Equal(t, "cache.other.example.com", creds.CacheEndpoint())
		assert.Equal(t, "token.other.example.com", creds.TokenEndpoint())
		assert.Equal(t, EndpointSecurityTLS, creds.EndpointSecurity())
	})

	t.Run("insecure", func(t *testing.T) {
		creds := base.WithInsecureEndpointOverride("localhost:8080")
		assert.Equal(t, "localhost:8080", creds.CacheEndpoint())
		assert.Equal(t, "localhost:8080", creds.ControlEndpoint())
		assert.Equal(t, EndpointSecurityInsecure, creds.EndpointSecurity())
	})

	t.Run("secure keeps server name", func(t *testing.T) {
		creds := base.WithSecureEndpointOverride("10.0.0.1:443")
		assert.Equal(t, EndpointSecurityTLSOverride, creds.EndpointSecurity())
		assert.Equal(t, "cache."+testEndpoint, creds.tlsServerName)
	})

	t.Run("unverified", func(t *testing.T) {
		creds := base.WithUnverifiedTLSEndpointOverride("localhost:8443")
		assert.Equal(t, EndpointSecurityUnverified, creds.EndpointSecurity())
	})
}

func TestCredentialProviderStringRedactsToken(t *testing.T) {
	key := testV2Key(t)
	creds, err := FromAPIKeyV2(key, testEndpoint)
	require.NoError(t, err)

	s := creds.String()
	assert.NotContains(t, s, key)
	assert.Contains(t, s, "<redacted>")
	assert.Contains(t, s, "cache."+testEndpoint)
}

func TestZeroCredentialProviderRejected(t *testing.T) {
	_, err := NewCacheClient(CredentialProvider{}, InRegion(), 60)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
