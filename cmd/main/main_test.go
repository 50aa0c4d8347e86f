package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"param-server/src/config"
	"param-server/src/listener"
	"param-server/src/logger"
	"param-server/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigWriteAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	out, err := run(t, "config", "write", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	out, err = run(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 0.0.0.0:9000 provider=yahoo")
}

type fixedEstimator struct{}

func (fixedEstimator) Estimate(ctx context.Context, symbol string, years int) (models.MParameters, error) {
	return models.MParameters{Mu: 0.25, Sigma: 0.5, S0: float64(years)}, nil
}

func TestGetCommand(t *testing.T) {
	cfg := &models.MConfig{Host: "127.0.0.1", DefaultYears: 5, ReadBufferBytes: 256}
	l := listener.NewParamListener(cfg, fixedEstimator{}, nil, nil, logger.NewLogger(nil, "test"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, l.Listen(ctx))
	go l.Serve(ctx)

	out, err := run(t, "get", "aapl", "--years", "3", "--addr", l.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, "0.25 0.5 3\n", out)

	out, err = run(t, "get", "aapl", "--addr", l.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, "0.25 0.5 5\n", out)
}

func TestDialAddress(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "127.0.0.1:9000", dialAddress(cfg))
	cfg.Host = "10.1.2.3"
	assert.Equal(t, "10.1.2.3:9000", dialAddress(cfg))
}

func TestImportRejectsStoredUpstream(t *testing.T) {
	_, err := run(t, "import", "AAPL", "--from", "stored")
	assert.Error(t, err)
}
