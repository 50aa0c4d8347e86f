package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"param-server/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.Equal(t, 5, cfg.DefaultYears)
	assert.Equal(t, 256, cfg.ReadBufferBytes)
	assert.Zero(t, cfg.MaxConnections)
	assert.Zero(t, cfg.ReadTimeout())
	assert.Zero(t, cfg.FetchTimeout())
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		env      map[string]string
		wantErr  bool
		validate func(*testing.T, *Config)
	}{
		{
			name: "file overrides defaults",
			yaml: "host: 127.0.0.1\nport: 9100\nread_timeout_seconds: 5\nfetch_timeout_seconds: 20\nmax_connections: 64\n",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, "127.0.0.1:9100", c.Address())
				assert.Equal(t, 5*time.Second, c.ReadTimeout())
				assert.Equal(t, 20*time.Second, c.FetchTimeout())
				assert.Equal(t, 64, c.MaxConnections)
				assert.Equal(t, "yahoo", c.DataSource.Provider)
			},
		},
		{
			name: "env wins over file",
			yaml: "port: 9100\n",
			env:  map[string]string{"PARAMSERVER_PORT": "9200", "PARAMSERVER_ADMIN_ENABLED": "true"},
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, 9200, c.Port)
				assert.True(t, c.Admin.Enabled)
			},
		},
		{
			name:    "non-integer env",
			yaml:    "port: 9100\n",
			env:     map[string]string{"PARAMSERVER_PORT": "nine"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			yaml:    "data_source:\n  provider: bloomberg\n",
			wantErr: true,
		},
		{
			name:    "port out of range",
			yaml:    "port: 70000\n",
			wantErr: true,
		},
		{
			name:    "stored provider without postgres dsn",
			yaml:    "data_source:\n  provider: stored\nstorage:\n  db_type: postgres\n",
			wantErr: true,
		},
		{
			name: "stored provider with sqlite",
			yaml: "data_source:\n  provider: stored\nstorage:\n  db_type: sqlite\n  db_path: /tmp/x.db\n",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, "stored", c.DataSource.Provider)
			},
		},
		{
			name:    "malformed yaml",
			yaml:    "port: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, "config.yaml", tt.yaml)

			cfg, err := NewConfig(path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestApplyEnvRejectsBadBool(t *testing.T) {
	t.Setenv("PARAMSERVER_GRPC_ENABLED", "maybe")
	err := Default().ApplyEnv()
	require.Error(t, err)
	assert.Equal(t, "configuration", helpers.Category(err))
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	t.Setenv("PARAMSERVER_DEFAULT_YEARS", "")
	os.Unsetenv("PARAMSERVER_DEFAULT_YEARS")
	path := writeFile(t, ".env", "PARAMSERVER_DEFAULT_YEARS=3\n")
	require.NoError(t, LoadEnvFile(path))

	cfg, err := NewConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.DefaultYears)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Port = 9300
	cfg.DataSource.Provider = "financego"

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9300, loaded.Port)
	assert.Equal(t, "financego", loaded.DataSource.Provider)
}
