// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/run/p0f.sock", cfg.Socket)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, OutputText, cfg.Output)
	assert.Equal(t, time.Second, cfg.Delay)
	assert.Equal(t, "127.0.0.1:6666", cfg.Inbound.Listen)
	assert.Equal(t, 1, cfg.Inbound.Count)
	assert.Equal(t, "45.79.112.203:4242", cfg.Outbound.Target)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Log.File.Enabled)
	assert.Equal(t, 100, cfg.Log.File.MaxSizeMB)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gop0f.yaml")
	data := []byte(`socket: /tmp/p0f.sock
timeout: 250ms
output: json
inbound:
  count: 3
log:
  level: debug
  file:
    enabled: true
    path: /tmp/gop0f.log
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/p0f.sock", cfg.Socket)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, OutputJson, cfg.Output)
	assert.Equal(t, 3, cfg.Inbound.Count)
	// Keys not in the file keep their defaults
	assert.Equal(t, "127.0.0.1:6666", cfg.Inbound.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.File.Enabled)
	assert.Equal(t, "/tmp/gop0f.log", cfg.Log.File.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("GOP0F_SOCKET", "/run/p0f/api.sock")
	t.Setenv("GOP0F_LOG_LEVEL", "warn")
	t.Setenv("GOP0F_INBOUND_COUNT", "0")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/run/p0f/api.sock", cfg.Socket)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 0, cfg.Inbound.Count)
}

func TestLoadFlags(t *testing.T) {
	t.Setenv("GOP0F_OUTPUT", "json")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("socket", "", "")
	flags.String("output", "", "")
	flags.Duration("delay", 0, "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--output", "cbor", "--delay", "3s"}))
	cfg, err := Load("", flags)
	require.NoError(t, err)
	// Flags that were set win over the environment
	assert.Equal(t, OutputCbor, cfg.Output)
	assert.Equal(t, 3*time.Second, cfg.Delay)
	// Flags that weren't set don't override the defaults
	assert.Equal(t, "/var/run/p0f.sock", cfg.Socket)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestValidateCaseInsensitiveLog(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	cfg.Log.Level = "DEBUG"
	cfg.Log.Format = "JSON"
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	testDefs := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"empty socket", func(c *Config) { c.Socket = "" }, "socket"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"negative delay", func(c *Config) { c.Delay = -time.Second }, "delay"},
		{"bad output", func(c *Config) { c.Output = "xml" }, "output format"},
		{"negative count", func(c *Config) { c.Inbound.Count = -1 }, "inbound.count"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log level"},
		{"bad format", func(c *Config) { c.Log.Format = "logfmt" }, "log format"},
		{"file without path", func(c *Config) {
			c.Log.File.Enabled = true
			c.Log.File.Path = ""
		}, "log.file.path"},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			cfg, err := Load("", nil)
			require.NoError(t, err)
			testDef.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), testDef.errMsg)
		})
	}
}
