package momento

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pior/momento/internal/momentotest"
	"github.com/stretchr/testify/require"
)

const testEndpoint = "test.momentohq.com"

func testV2Key(t testing.TB) string {
	t.Helper()
	key, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"t": "g", "id": "test"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return key
}

func testLegacyKey(t testing.TB) string {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"endpoint": testEndpoint, "api_key": "legacy-secret"})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(payload)
}

// testCredentials points every endpoint at srv.
func testCredentials(t testing.TB) CredentialProvider {
	t.Helper()
	creds, err := FromAPIKeyV2(testV2Key(t), testEndpoint)
	require.NoError(t, err)
	return creds.WithInsecureEndpointOverride(momentotest.Target)
}

func testConfig() Configuration {
	return InRegion().WithClientTimeout(2 * time.Second).WithoutKeepAlive()
}

func newTestCacheClient(t *testing.T, srv *momentotest.Server, opts ...Option) *CacheClient {
	t.Helper()
	opts = append([]Option{WithDialOptions(srv.DialOption())}, opts...)
	client, err := NewCacheClient(testCredentials(t), testConfig(), time.Minute, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestTopicClient(t *testing.T, srv *momentotest.Server, cfg Configuration) *TopicClient {
	t.Helper()
	client, err := NewTopicClient(testCredentials(t), cfg, WithDialOptions(srv.DialOption()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}
