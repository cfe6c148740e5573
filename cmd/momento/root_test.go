package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"cache", "get", "set", "delete", "topic", "token"} {
		require.Contains(t, out, name)
	}
}

func TestGetRequiresCache(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, "get", "k")
	require.ErrorContains(t, err, "a cache name is required")
}

func TestMissingCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MOMENTO_TEST_KEY", "")
	t.Setenv("MOMENTO_ENDPOINT", "")

	_, err := run(t, "--cache", "c", "--api-key-env", "MOMENTO_TEST_KEY", "get", "k")
	require.ErrorContains(t, err, "MOMENTO_TEST_KEY")
}

func TestUnknownProfile(t *testing.T) {
	a := &app{settings: settings{Profile: "mainframe"}}
	_, err := a.configuration()
	require.ErrorContains(t, err, "unknown profile")
}

func TestConfigurationTimeoutOverride(t *testing.T) {
	a := &app{settings: settings{Profile: "in-region", Timeout: 3 * time.Second}}
	cfg, err := a.configuration()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfg.ClientTimeout())
}

func TestSettingsPrecedence(t *testing.T) {
	t.Setenv("MOMENTO_TEST_KEY", "")
	t.Setenv("MOMENTO_ENDPOINT", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache: from-file\ndefault_ttl: 90s\nprofile: lambda\n"), 0o600))

	a := &app{v: viper.New()}
	root := newRoot(a)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "--profile", "low-latency", "--api-key-env", "MOMENTO_TEST_KEY", "cache", "list"})

	// Settings are loaded before the client fails on the missing key.
	require.Error(t, root.Execute())
	require.Equal(t, "from-file", a.settings.Cache)
	require.Equal(t, 90*time.Second, a.settings.DefaultTTL)
	require.Equal(t, "low-latency", a.settings.Profile)
}

func TestMissingConfigFile(t *testing.T) {
	a := &app{v: viper.New(), cfgFile: filepath.Join(t.TempDir(), "missing.yaml")}
	require.ErrorContains(t, a.loadSettings(), "error reading config")
}

func TestNewLogger(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, newLogger("debug", "json").GetLevel())
	require.Equal(t, zerolog.WarnLevel, newLogger("bogus", "console").GetLevel())
}
