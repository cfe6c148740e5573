package momento

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/pior/momento/wire"
)

// DisposableToken is a short-lived credential returned by
// GenerateDisposableToken. AuthToken is accepted by FromDisposableToken.
type DisposableToken struct {
	AuthToken string
	Endpoint  string
	ExpiresAt time.Time
}

// String hides the token.
func (t DisposableToken) String() string {
	prefix := t.AuthToken
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	return "DisposableToken{token: " + prefix + "..., endpoint: " + t.Endpoint + ", expires_at: " + t.ExpiresAt.UTC().Format(time.RFC3339) + "}"
}

// AuthClient issues tokens with the credentials it was created with.
type AuthClient struct {
	endpoint  *endpoint
	authToken string
	stats     clientStatsCollector
}

func NewAuthClient(creds CredentialProvider, cfg Configuration, opts ...Option) (*AuthClient, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	e, err := newEndpoint("token", creds.tokenEndpoint, 1, creds, cfg, "auth", o)
	if err != nil {
		return nil, err
	}
	return &AuthClient{endpoint: e, authToken: creds.authToken}, nil
}

func (c *AuthClient) Close() error {
	return c.endpoint.close()
}

// Stats returns a snapshot of client statistics. Only Errors is counted.
func (c *AuthClient) Stats() ClientStats {
	return c.stats.snapshot()
}

func (c *AuthClient) EndpointStats() []EndpointStats {
	return []EndpointStats{c.endpoint.stats()}
}

// GenerateDisposableToken issues a token limited to scope. It must expire
// within MaxDisposableTokenExpiry. tokenID is optional and, when set, is
// reported with the calls made with the token.
func (c *AuthClient) GenerateDisposableToken(ctx context.Context, scope PermissionScope, expiresIn ExpiresIn, tokenID string) (DisposableToken, error) {
	req, err := c.disposableTokenRequest(scope, expiresIn, tokenID)
	if err != nil {
		c.stats.recordError()
		return DisposableToken{}, err
	}

	var resp wire.GenerateDisposableTokenResponse
	if err := c.endpoint.invoke(ctx, nil, wire.MethodGenerateDisposableToken, req, &resp); err != nil {
		c.stats.recordError()
		return DisposableToken{}, err
	}

	payload, err := json.Marshal(legacyToken{Endpoint: resp.Endpoint, APIKey: resp.APIKey})
	if err != nil {
		c.stats.recordError()
		return DisposableToken{}, unknownError("could not encode the disposable token", err)
	}

	return DisposableToken{
		AuthToken: base64.StdEncoding.EncodeToString(payload),
		Endpoint:  resp.Endpoint,
		ExpiresAt: time.Unix(int64(resp.ValidUntil), 0),
	}, nil
}

func (c *AuthClient) disposableTokenRequest(scope PermissionScope, expiresIn ExpiresIn, tokenID string) (*wire.GenerateDisposableTokenRequest, error) {
	if !expiresIn.DoesExpire() {
		return nil, invalidArgument("Disposable tokens must have an expiry")
	}
	if expiresIn.Seconds() == 0 {
		return nil, invalidArgument("Disposable token expiry must be positive")
	}
	if expiresIn.Seconds() > uint64(MaxDisposableTokenExpiry/time.Second) {
		return nil, invalidArgument("Disposable tokens must expire within %s", MaxDisposableTokenExpiry)
	}
	if err := validateTokenID(tokenID); err != nil {
		return nil, err
	}

	permissions, err := scope.toWire()
	if err != nil {
		return nil, err
	}

	return &wire.GenerateDisposableTokenRequest{
		ValidForSeconds: expiresIn.Seconds(),
		AuthToken:       c.authToken,
		Permissions:     permissions,
		TokenID:         tokenID,
	}, nil
}

// validateTokenID accepts the empty id, meaning none.
func validateTokenID(id string) error {
	if id == "" {
		return nil
	}
	if strings.TrimSpace(id) == "" {
		return invalidArgument("Token ID cannot be blank")
	}
	if len(id) > MaxTokenIDLength {
		return invalidArgument("Token ID must be at most %d characters, got %d", MaxTokenIDLength, len(id))
	}
	return nil
}
