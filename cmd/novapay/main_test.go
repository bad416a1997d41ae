package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/aretw0/novapay/internal/config"
	"github.com/aretw0/novapay/internal/logging"
	"github.com/aretw0/novapay/pkg/adapters/file"
	"github.com/aretw0/novapay/pkg/adapters/memory"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/flows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.True(t, strings.HasPrefix(out, "novapay version "))
}

func TestFlowsListCommand(t *testing.T) {
	isolate(t)
	out := execute(t, "flows", "list")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "send-money")
	assert.Contains(t, out, "Recipient › Amount › Review › Success")
	assert.Contains(t, out, "loan-apply")
}

func TestFlowsGraphCommand(t *testing.T) {
	isolate(t)
	out := execute(t, "flows", "graph", flows.ForgotPassword)
	assert.True(t, strings.HasPrefix(out, "graph LR"))
	assert.Contains(t, out, "otp")
}

func TestNewBackend(t *testing.T) {
	logger := logging.NewNop()

	cfg := config.Default()
	b, err := newBackend(cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, b.store)
	assert.Nil(t, b.locker)

	cfg.Store.Driver = "file"
	cfg.Store.File.Dir = t.TempDir()
	b, err = newBackend(cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, b.store)

	cfg.Store.EncryptionKey = "short"
	_, err = newBackend(cfg, logger)
	assert.Error(t, err)
}

func TestNewApp_EncryptedFileStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "file"
	cfg.Store.File.Dir = t.TempDir()
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	cfg.Simulate.Latency = 0

	app, closeStore, err := newApp(cfg, logging.NewNop())
	require.NoError(t, err)
	defer closeStore()

	ctx := context.Background()
	state, err := app.Sessions.Start(ctx, flows.ForgotPassword)
	require.NoError(t, err)
	_, err = app.Sessions.SubmitField(ctx, state.SessionID, "email", "user@example.com")
	require.NoError(t, err)

	// The raw file holds no payload in clear.
	raw, err := file.New(cfg.Store.File.Dir).Load(ctx, state.SessionID)
	require.NoError(t, err)
	assert.NotContains(t, raw.Payload, "email")

	loaded, err := app.Sessions.Load(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", loaded.Payload["email"])
}

func TestQuitMessage(t *testing.T) {
	state := domain.NewState("abc-123", flows.SendMoney)

	msg := quitMessage(config.StoreConfig{Driver: "memory"}, state)
	assert.NotContains(t, msg, "--session")

	for _, driver := range []string{"file", "redis"} {
		msg = quitMessage(config.StoreConfig{Driver: driver}, state)
		assert.Contains(t, msg, "novapay run --session abc-123", driver)
	}

	assert.NotContains(t, quitMessage(config.StoreConfig{Driver: "file"}, nil), "--session")
}
