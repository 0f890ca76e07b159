package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twinview/internal/logger"
	"twinview/internal/viewport"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, logger.InfoLevel, cfg.Level())
	assert.Equal(t, viewport.Bilinear, cfg.InterpolationMode())
	assert.Equal(t, 5, cfg.RecentLimit)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "warn"
left_dir = "/data/a"
interpolation = "nearest"
workers = 3
`)
	cfg := Default()
	require.NoError(t, LoadFile(path, &cfg, true))
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/data/a", cfg.LeftDir)
	assert.Equal(t, viewport.Nearest, cfg.InterpolationMode())
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	missing := filepath.Join(t.TempDir(), "none.toml")
	assert.NoError(t, LoadFile(missing, &cfg, false))
	assert.ErrorIs(t, LoadFile(missing, &cfg, true), os.ErrNotExist)
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `zoom = 2`)
	cfg := Default()
	assert.ErrorContains(t, LoadFile(path, &cfg, true), "zoom")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnv(&cfg, env(map[string]string{"DEBUG": "1", "TWINVIEW_WORKERS": "2"})))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Workers)

	cfg = Default()
	require.NoError(t, ApplyEnv(&cfg, env(map[string]string{"DEBUG": "1", "LOG_LEVEL": "error"})))
	assert.Equal(t, "error", cfg.LogLevel)

	assert.Error(t, ApplyEnv(&cfg, env(map[string]string{"TWINVIEW_WORKERS": "many"})))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidLevel)

	cfg = Default()
	cfg.LogFormat = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidFormat)

	cfg = Default()
	cfg.Interpolation = "cubic"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInterpolation)

	cfg = Default()
	cfg.RecentLimit = 0
	assert.Error(t, cfg.Validate())
}

func TestResolvePrecedence(t *testing.T) {
	path := writeConfig(t, `
log_level = "warn"
filter = "^a"
workers = 3
`)
	fs := pflag.NewFlagSet("twinview", pflag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--workers", "7", "--right", "/r"}))

	cfg, err := flags.Resolve(env(map[string]string{"LOG_LEVEL": "debug", "TWINVIEW_WORKERS": "5"}))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel, "env beats file")
	assert.Equal(t, 7, cfg.Workers, "flag beats env")
	assert.Equal(t, "^a", cfg.Filter, "file beats default")
	assert.Equal(t, "/r", cfg.RightDir)
	assert.Equal(t, "bilinear", cfg.Interpolation, "unset flag keeps default")
}

func TestResolveExplicitConfigMustExist(t *testing.T) {
	fs := pflag.NewFlagSet("twinview", pflag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.toml")}))

	_, err := flags.Resolve(env(nil))
	assert.Error(t, err)
}

type memPrefs map[string][]string

func (m memPrefs) StringList(key string) []string { return m[key] }

func (m memPrefs) SetStringList(key string, value []string) { m[key] = value }

func TestRecentMostRecentFirstDeduplicated(t *testing.T) {
	prefs := memPrefs{}
	r := NewRecent(prefs, 3)

	r.Add("/a")
	r.Add("/b")
	r.Add("/c")
	assert.Equal(t, []string{"/c", "/b", "/a"}, r.List())

	r.Add("/a/")
	assert.Equal(t, []string{"/a", "/c", "/b"}, r.List())

	r.Add("/d")
	assert.Equal(t, []string{"/d", "/a", "/c"}, prefs[RecentKey])
}

func TestRecentAvailableHidesMissingFolders(t *testing.T) {
	live := t.TempDir()
	prefs := memPrefs{RecentKey: {filepath.Join(live, "gone"), live}}
	r := NewRecent(prefs, 0)
	assert.Equal(t, []string{live}, r.Available())
}
