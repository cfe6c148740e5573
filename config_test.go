package momento

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Configuration
		timeout  time.Duration
		keepAlive bool
	}{
		{"laptop", Laptop(), 15 * time.Second, true},
		{"in region", InRegion(), 1100 * time.Millisecond, true},
		{"low latency", LowLatency(), 500 * time.Millisecond, true},
		{"lambda", Lambda(), 1100 * time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.cfg.Validate())
			assert.Equal(t, tt.timeout, tt.cfg.ClientTimeout())
			assert.Equal(t, 1, tt.cfg.Grpc.NumChannels)
			assert.Equal(t, tt.keepAlive, tt.cfg.Grpc.KeepAliveInterval > 0)
			assert.Equal(t, DefaultMaxMessageBytes, tt.cfg.Grpc.MaxSendMessageBytes)
		})
	}
}

func TestConfigurationModifiersCopy(t *testing.T) {
	base := InRegion()
	cfg := base.
		WithClientTimeout(3*time.Second).
		WithNumChannels(4).
		WithMaxMessageBytes(1024, 2048).
		WithEagerConnectTimeout(time.Second).
		WithoutKeepAlive()

	assert.Equal(t, 3*time.Second, cfg.ClientTimeout())
	assert.Equal(t, 4, cfg.Grpc.NumChannels)
	assert.Equal(t, 1024, cfg.Grpc.MaxSendMessageBytes)
	assert.Equal(t, 2048, cfg.Grpc.MaxRecvMessageBytes)
	assert.Equal(t, time.Second, cfg.EagerConnectTimeout)
	assert.Zero(t, cfg.Grpc.KeepAliveInterval)

	assert.Equal(t, InRegion(), base)
}

func TestConfigurationValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Configuration
	}{
		{"zero timeout", InRegion().WithClientTimeout(0)},
		{"no channels", InRegion().WithNumChannels(0)},
		{"negative keepalive", InRegion().WithKeepAlive(true, -time.Second, time.Second)},
		{"negative message size", InRegion().WithMaxMessageBytes(-1, 0)},
		{"negative eager connect", InRegion().WithEagerConnectTimeout(-time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), ErrInvalidArgument)
		})
	}
}

func TestConfigurationFromEnv(t *testing.T) {
	t.Setenv("MOMENTO_CLIENT_TIMEOUT", "750ms")
	t.Setenv("MOMENTO_NUM_CHANNELS", "3")
	t.Setenv("MOMENTO_MAX_RECV_MESSAGE_BYTES", "1000")

	cfg, err := ConfigurationFromEnv(Laptop())
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.ClientTimeout())
	assert.Equal(t, 3, cfg.Grpc.NumChannels)
	assert.Equal(t, 1000, cfg.Grpc.MaxRecvMessageBytes)

	// Unset variables keep the base values.
	assert.Equal(t, DefaultMaxMessageBytes, cfg.Grpc.MaxSendMessageBytes)
	assert.Equal(t, 5*time.Second, cfg.Grpc.KeepAliveInterval)
	assert.True(t, cfg.Grpc.KeepAliveWhileIdle)
}

func TestConfigurationFromEnvInvalid(t *testing.T) {
	t.Setenv("MOMENTO_CLIENT_TIMEOUT", "soon")
	_, err := ConfigurationFromEnv(Laptop())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	t.Setenv("MOMENTO_CLIENT_TIMEOUT", "1s")
	t.Setenv("MOMENTO_NUM_CHANNELS", "0")
	_, err = ConfigurationFromEnv(Laptop())
	assert.ErrorContains(t, err, "number of channels")
}
