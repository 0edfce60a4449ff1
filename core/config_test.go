package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signatory-io/jsonlines/logger"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, conf *Config, args ...string) *cobra.Command {
	cmd := cobra.Command{Use: "test"}
	conf.RegisterFlags(cmd.Flags(), &cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return &cmd
}

func TestConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(`
listen_address: tcp://localhost:9000
log_level: debug
stream:
  buffer_limit: 1024
demo:
  interval: 50ms
  count: 3
`), 0600))

	var conf Config
	conf.Default()
	cmd := newFlags(t, &conf, "--base-dir", dir, "--log-level", "warn")
	require.NoError(t, conf.FromCmdline(true, cmd.Flags()))

	require.Equal(t, dir, conf.BasePath)
	require.Equal(t, "tcp://localhost:9000", conf.ListenAddress)
	require.Equal(t, DefaultEndpoint, conf.Endpoint)
	require.Equal(t, logger.LevelWarn, conf.LogLevel)
	require.Equal(t, 1024, conf.Stream.BufferLimit)
	require.Equal(t, 50*time.Millisecond, conf.Demo.Interval)
	require.Equal(t, 3, conf.Demo.Count)
}

func TestConfigMissingFile(t *testing.T) {
	dir := t.TempDir()

	var conf Config
	conf.Default()
	cmd := newFlags(t, &conf, "--base-dir", dir)
	require.NoError(t, conf.FromCmdline(true, cmd.Flags()))
	require.Equal(t, DefaultListenAddress, conf.ListenAddress)

	conf.Default()
	cmd = newFlags(t, &conf, "--base-dir", dir, "--config-file", "missing.yaml")
	require.Error(t, conf.FromCmdline(true, cmd.Flags()))
}

func TestGetPath(t *testing.T) {
	require.Equal(t, "/etc/jsonl.yaml", GetPath("/etc/jsonl.yaml", "/home/user"))
	require.Equal(t, filepath.Join("/home/user", "config.yaml"), GetPath("config.yaml", "/home/user"))
}
