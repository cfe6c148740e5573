package momento

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// EndpointSecurity selects how connections to the endpoints are secured.
type EndpointSecurity int

const (
	// EndpointSecurityTLS verifies the endpoints against the system roots.
	EndpointSecurityTLS EndpointSecurity = iota
	// EndpointSecurityTLSOverride connects to overridden endpoints but
	// verifies them under the cache host name derived from the key.
	EndpointSecurityTLSOverride
	// EndpointSecurityInsecure uses plaintext connections.
	EndpointSecurityInsecure
	// EndpointSecurityUnverified uses TLS without certificate verification.
	EndpointSecurityUnverified
)

func (s EndpointSecurity) String() string {
	switch s {
	case EndpointSecurityTLS:
		return "tls"
	case EndpointSecurityTLSOverride:
		return "tls-override"
	case EndpointSecurityInsecure:
		return "insecure"
	case EndpointSecurityUnverified:
		return "unverified"
	default:
		return fmt.Sprintf("EndpointSecurity(%d)", int(s))
	}
}

// CredentialProvider holds the auth token and the endpoints it grants
// access to. The zero value is not usable; build one with a From function.
type CredentialProvider struct {
	authToken         string
	cacheEndpoint     string
	controlEndpoint   string
	tokenEndpoint     string
	cacheHTTPEndpoint string
	tlsServerName     string
	security          EndpointSecurity
}

// legacyToken is the JSON payload of base64 v1 keys and disposable tokens.
type legacyToken struct {
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
}

// FromEnvVar reads a legacy API key or disposable token from the named
// environment variable.
//
// Deprecated: use FromEnvVarV2.
func FromEnvVar(name string) (CredentialProvider, error) {
	token := os.Getenv(name)
	if token == "" {
		return CredentialProvider{}, invalidArgument("Env var %s must be set", name)
	}
	if isV2APIKey(token) {
		return CredentialProvider{}, invalidArgument("Received a v2 API key. Are you using the correct key? Or did you mean to use `FromEnvVarV2()` instead?")
	}
	return decodeLegacyToken(token)
}

// FromString parses a legacy API key.
//
// Deprecated: use FromAPIKeyV2 or FromDisposableToken.
func FromString(token string) (CredentialProvider, error) {
	if isV2APIKey(token) {
		return CredentialProvider{}, invalidArgument("Received a v2 API key. Are you using the correct key? Or did you mean to use `FromAPIKeyV2()` or `FromDisposableToken()` instead?")
	}
	if token == "" {
		return CredentialProvider{}, invalidArgument("Auth token string cannot be empty")
	}
	return decodeLegacyToken(token)
}

// FromDisposableToken parses a token returned by
// AuthClient.GenerateDisposableToken.
func FromDisposableToken(token string) (CredentialProvider, error) {
	if isV2APIKey(token) {
		return CredentialProvider{}, invalidArgument("Received a v2 API key. Are you using the correct key? Or did you mean to use `FromAPIKeyV2()` instead?")
	}
	if token == "" {
		return CredentialProvider{}, invalidArgument("Auth token cannot be empty")
	}
	return decodeLegacyToken(token)
}

// FromAPIKeyV2 builds a provider from a v2 API key and the base endpoint it
// was issued for, e.g. "cell-us-east-1-1.prod.a.momentohq.com".
func FromAPIKeyV2(apiKey, endpoint string) (CredentialProvider, error) {
	if apiKey == "" {
		return CredentialProvider{}, invalidArgument("API key cannot be empty")
	}
	if endpoint == "" {
		return CredentialProvider{}, invalidArgument("Endpoint string cannot be empty")
	}
	if !isV2APIKey(apiKey) {
		return CredentialProvider{}, invalidArgument("Received an invalid v2 API key. Are you using the correct key? Or did you mean to use `FromString()` with a legacy key instead?")
	}
	return newCredentialProvider(apiKey, endpoint), nil
}

// FromEnvVarV2 reads a v2 API key and its endpoint from two environment
// variables.
func FromEnvVarV2(apiKeyVar, endpointVar string) (CredentialProvider, error) {
	if apiKeyVar == "" {
		return CredentialProvider{}, invalidArgument("API key env var name cannot be empty")
	}
	apiKey := os.Getenv(apiKeyVar)
	if apiKey == "" {
		return CredentialProvider{}, invalidArgument("Env var %s must be set", apiKeyVar)
	}
	if !isV2APIKey(apiKey) {
		return CredentialProvider{}, invalidArgument("Received an invalid v2 API key. Are you using the correct key? Or did you mean to use `FromEnvVar()` with a legacy key instead?")
	}

	if endpointVar == "" {
		return CredentialProvider{}, invalidArgument("Endpoint env var name cannot be empty")
	}
	endpoint := os.Getenv(endpointVar)
	if endpoint == "" {
		return CredentialProvider{}, invalidArgument("Env var %s must be set", endpointVar)
	}

	return FromAPIKeyV2(apiKey, endpoint)
}

func newCredentialProvider(token, endpoint string) CredentialProvider {
	return CredentialProvider{
		authToken:         token,
		cacheEndpoint:     "cache." + endpoint,
		controlEndpoint:   "control." + endpoint,
		tokenEndpoint:     "token." + endpoint,
		cacheHTTPEndpoint: "api.cache." + endpoint,
		tlsServerName:     "cache." + endpoint,
		security:          EndpointSecurityTLS,
	}
}

func decodeLegacyToken(token string) (CredentialProvider, error) {
	data, err := decodeBase64(token)
	if err != nil {
		return decodeLegacyJWT(token)
	}

	var payload legacyToken
	if err := json.Unmarshal(data, &payload); err != nil {
		return CredentialProvider{}, tokenParsingError(err)
	}
	if payload.APIKey == "" || payload.Endpoint == "" {
		return CredentialProvider{}, tokenParsingError(nil)
	}
	return newCredentialProvider(payload.APIKey, payload.Endpoint), nil
}

// decodeLegacyJWT handles the oldest keys: a bare JWT whose "c" and "cp"
// claims carry the cache and control host names.
func decodeLegacyJWT(token string) (CredentialProvider, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return CredentialProvider{}, tokenParsingError(err)
	}

	cache, _ := claims["c"].(string)
	control, _ := claims["cp"].(string)
	if cache == "" || control == "" {
		return CredentialProvider{}, tokenParsingError(nil)
	}

	base := strings.TrimPrefix(cache, "cache.")
	return CredentialProvider{
		authToken:         token,
		cacheEndpoint:     cache,
		controlEndpoint:   control,
		tokenEndpoint:     "token." + base,
		cacheHTTPEndpoint: "api.cache." + base,
		tlsServerName:     cache,
		security:          EndpointSecurityTLS,
	}, nil
}

func tokenParsingError(cause error) *Error {
	return &Error{
		Code:    InvalidArgumentError,
		Message: "Could not parse token. Please ensure a valid token was entered correctly.",
		Cause:   cause,
	}
}

// decodeBase64 accepts the URL-safe alphabet used by API keys and the
// standard one, padded or not.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

// isV2APIKey reports whether key is a v2 API key: a JWT, not entirely
// base64, whose "t" claim is "g".
func isV2APIKey(key string) bool {
	if key == "" {
		return false
	}
	if _, err := base64.URLEncoding.DecodeString(key); err == nil {
		return false
	}
	if strings.Count(key, ".") != 2 {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return false
	}
	t, _ := claims["t"].(string)
	return t == "g"
}

// WithBaseEndpoint rederives every endpoint from a new base endpoint.
// The endpoint security is unchanged.
func (c CredentialProvider) WithBaseEndpoint(endpoint string) CredentialProvider {
	c.cacheEndpoint = "cache." + endpoint
	c.controlEndpoint = "control." + endpoint
	c.tokenEndpoint = "token." + endpoint
	c.cacheHTTPEndpoint = "api.cache." + endpoint
	return c
}

// WithEndpointOverride points every endpoint at the same address, keeping
// the endpoint security.
func (c CredentialProvider) WithEndpointOverride(endpoint string) CredentialProvider {
	c.cacheEndpoint = endpoint
	c.controlEndpoint = endpoint
	c.tokenEndpoint = endpoint
	c.cacheHTTPEndpoint = endpoint
	return c
}

// WithSecureEndpointOverride points every endpoint at the same address and
// verifies its certificate under the cache host name of the key.
func (c CredentialProvider) WithSecureEndpointOverride(endpoint string) CredentialProvider {
	c = c.WithEndpointOverride(endpoint)
	c.security = EndpointSecurityTLSOverride
	return c
}

// WithInsecureEndpointOverride points every endpoint at the same address
// and connects without TLS.
func (c CredentialProvider) WithInsecureEndpointOverride(endpoint string) CredentialProvider {
	c = c.WithEndpointOverride(endpoint)
	c.security = EndpointSecurityInsecure
	return c
}

// WithUnverifiedTLSEndpointOverride points every endpoint at the same
// address and accepts any certificate, such as a self-signed one.
func (c CredentialProvider) WithUnverifiedTLSEndpointOverride(endpoint string) CredentialProvider {
	c = c.WithEndpointOverride(endpoint)
	c.security = EndpointSecurityUnverified
	return c
}

func (c CredentialProvider) AuthToken() string                  { return c.authToken }
func (c CredentialProvider) CacheEndpoint() string              { return c.cacheEndpoint }
func (c CredentialProvider) ControlEndpoint() string            { return c.controlEndpoint }
func (c CredentialProvider) TokenEndpoint() string              { return c.tokenEndpoint }
func (c CredentialProvider) CacheHTTPEndpoint() string          { return c.cacheHTTPEndpoint }
func (c CredentialProvider) EndpointSecurity() EndpointSecurity { return c.security }

// String never includes the auth token.
func (c CredentialProvider) String() string {
	return fmt.Sprintf("CredentialProvider{auth_token: <redacted>, cache_endpoint: %s, control_endpoint: %s, token_endpoint: %s, security: %s}",
		c.cacheEndpoint, c.controlEndpoint, c.tokenEndpoint, c.security)
}

func (c CredentialProvider) validate() error {
	if c.authToken == "" || c.cacheEndpoint == "" {
		return invalidArgument("credential provider is not initialized; build it with one of the From functions")
	}
	return nil
}
