package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 1500*time.Millisecond, cfg.Simulate.Latency)
	assert.Equal(t, "123456", cfg.Mock.OTP)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	v := viper.New()
	require.NoError(t, Init(v, ""))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "novapay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
store:
  driver: redis
  redis:
    addr: redis:6379
    ttl: 2h
simulate:
  latency: 10ms
`), 0o644))
	t.Setenv("NOVAPAY_HTTP_ADDR", ":9090")
	t.Setenv("NOVAPAY_MOCK_OTP", "654321")

	v := viper.New()
	require.NoError(t, Init(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, 10*time.Millisecond, cfg.Simulate.Latency)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "654321", cfg.Mock.OTP)
	assert.Equal(t, "123456", cfg.Mock.MPIN)
}

func TestInit_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestBindFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", ":8080", "")
	fs.String("store", "memory", "")
	require.NoError(t, fs.Parse([]string{"--addr", ":7000", "--store", "file"}))

	v := viper.New()
	SetDefaults(v)
	require.NoError(t, BindFlags(v, fs, map[string]string{
		"addr":    "http.addr",
		"store":   "store.driver",
		"missing": "log.level",
	}))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, "file", cfg.Store.Driver)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "verbose"
	cfg.Store.Driver = "sqlite"
	cfg.Mock.MPIN = "12ab56"
	cfg.Input.MaxSize = 0

	errs := cfg.Validate()
	require.Len(t, errs, 4)
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.Equal(t, []string{"log.level", "store.driver", "mock.mpin", "input.max_size"}, fields)
	assert.Contains(t, errs.Error(), "4 validation errors")

	v := viper.New()
	SetDefaults(v)
	v.Set("store.driver", "sqlite")
	_, err := Load(v)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "store.driver", verrs[0].Field)
}

func TestValidate_DriverRequirements(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "redis"
	cfg.Store.Redis.Addr = ""
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "store.redis.addr", errs[0].Field)
}

func TestStoreConfig_Persistent(t *testing.T) {
	assert.False(t, StoreConfig{Driver: "memory"}.Persistent())
	assert.False(t, StoreConfig{}.Persistent())
	assert.True(t, StoreConfig{Driver: "file"}.Persistent())
	assert.True(t, StoreConfig{Driver: "redis"}.Persistent())
}
