package config

import (
	"os"
	"path/filepath"
	"testing"

	"nbxwatch/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nbxwatch.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("parses a full configuration", func(t *testing.T) {
		path := writeConfig(t, `
[global]
nbx_url = http://127.0.0.1:24444/
nbx_user = watcher
nbx_pass = hunter2
local_explorer_url = https://10.10.1.10:4081
explorer_url = https://mempool.space
timezone_offset_hours = -3
timezone_label = GMT-3
pgp_enabled = true
pgp_recipient = ops@example.com
smtp_server = smtp.example.com
smtp_port = 465
smtp_user = mailer
smtp_pass = mailpass
mail_from = watcher@example.com
mail_to = ops@example.com

[wallet cold]
name = Cold Storage
xpub = xpub6CUGRUonZSQ4TWtTMmzXdrXDtypWKiKrhko4egpiMZbpiaQL2jkwSB1icqYh2cfDfVxdx4df189oLKnC5fSwqPfgyP3hooxujYzAu3fDVmz

[wallet shop]
name = Shop
derivation = xpub-shop-[p2wpkh]
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "http://127.0.0.1:24444", cfg.NBXURL, "trailing slash is trimmed")
		assert.Equal(t, "watcher", cfg.NBXUser)
		assert.Equal(t, "hunter2", cfg.NBXPass)
		assert.Equal(t, "https://10.10.1.10:4081", cfg.LocalExplorerURL)
		assert.Equal(t, "https://mempool.space", cfg.PublicExplorerURL)
		assert.Equal(t, -3.0, cfg.TimezoneOffsetHours)
		assert.Equal(t, "GMT-3", cfg.TimezoneLabel)
		assert.Equal(t, "memory", cfg.DedupBackend, "dedup backend defaults to memory")

		assert.True(t, cfg.PGP.Enabled)
		assert.Equal(t, "ops@example.com", cfg.PGP.Recipient)

		assert.Equal(t, "smtp.example.com", cfg.SMTP.Server)
		assert.Equal(t, 465, cfg.SMTP.Port)
		assert.True(t, cfg.SMTP.Complete())

		require.Len(t, cfg.Wallets, 2)

		byID := map[string]Wallet{}
		for _, w := range cfg.Wallets {
			byID[w.SectionID] = w
		}

		cold := byID["cold"]
		assert.Equal(t, "Cold Storage", cold.Name)
		assert.False(t, cold.IsManaged())
		assert.Equal(t, cold.XPub, cold.Descriptor())

		shop := byID["shop"]
		assert.Equal(t, "Shop", shop.Name)
		assert.True(t, shop.IsManaged())
		assert.Equal(t, "xpub-shop-[p2wpkh]", shop.Descriptor())
	})

	t.Run("applies defaults for optional globals", func(t *testing.T) {
		path := writeConfig(t, `
[global]
nbx_url = http://127.0.0.1:24444
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "Local", cfg.TimezoneLabel)
		assert.Equal(t, 587, cfg.SMTP.Port)
		assert.Equal(t, "memory", cfg.DedupBackend)
		assert.False(t, cfg.SMTP.Complete())
	})

	t.Run("cookie file overrides static credentials", func(t *testing.T) {
		cookiePath := filepath.Join(t.TempDir(), ".cookie")
		require.NoError(t, os.WriteFile(cookiePath, []byte("__cookie__:67611abc\n"), 0o600))

		path := writeConfig(t, `
[global]
nbx_url = http://127.0.0.1:24444
nbx_user = ignored
nbx_pass = ignored
nbx_cookiefile = `+cookiePath+`
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "__cookie__", cfg.NBXUser)
		assert.Equal(t, "67611abc", cfg.NBXPass)
	})

	t.Run("bare cookie secret maps to the cookie user", func(t *testing.T) {
		cookiePath := filepath.Join(t.TempDir(), ".cookie")
		require.NoError(t, os.WriteFile(cookiePath, []byte("secretonly"), 0o600))

		path := writeConfig(t, `
[global]
nbx_url = http://127.0.0.1:24444
nbx_cookiefile = `+cookiePath+`
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "__cookie__", cfg.NBXUser)
		assert.Equal(t, "secretonly", cfg.NBXPass)
	})

	t.Run("unreadable cookie file is fatal", func(t *testing.T) {
		path := writeConfig(t, `
[global]
nbx_url = http://127.0.0.1:24444
nbx_cookiefile = /nonexistent/.cookie
`)

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cookie file")
	})

	t.Run("missing service url fails validation", func(t *testing.T) {
		path := writeConfig(t, `
[global]
smtp_server = smtp.example.com
`)

		_, err := Load(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("missing config file is fatal", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
		assert.Error(t, err)
	})
}

func TestLoadRuntime(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		rt, err := LoadRuntime()
		require.NoError(t, err)

		assert.Equal(t, "info", rt.LogLevel)
		assert.Equal(t, "nbxwatch", rt.ServiceName)
		assert.False(t, rt.TelemetryEnabled)
		assert.NotEmpty(t, rt.ConfigPath)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("NBXWATCH_CONFIG", "/tmp/custom.conf")
		t.Setenv("NBXWATCH_LOG_LEVEL", "debug")
		t.Setenv("NBXWATCH_TELEMETRY_ENABLED", "true")

		rt, err := LoadRuntime()
		require.NoError(t, err)

		assert.Equal(t, "/tmp/custom.conf", rt.ConfigPath)
		assert.Equal(t, "debug", rt.LogLevel)
		assert.True(t, rt.TelemetryEnabled)
	})
}
