package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"param-server/src/helpers"
	"param-server/src/models"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "PARAMSERVER_"

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// Default returns a runnable single-host configuration.
func Default() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:            "param-server",
		Host:            "0.0.0.0",
		Port:            9000,
		LogLevel:        "INFO",
		DefaultYears:    5,
		ReadBufferBytes: 256,
		Admin:           models.MEndpointConfig{Host: "127.0.0.1", Port: 8080},
		Grpc:            models.MEndpointConfig{Host: "127.0.0.1", Port: 50051},
		Storage:         models.MStorageConfig{DBType: "sqlite", DBPath: "prices.db"},
		Network:         models.MNetworkConfig{RequestTimeout: 30},
		DataSource:      models.MDataSourceConfig{Provider: "yahoo", MinPrices: 3},
	}}
}

// -----------------------------------------------------------------------------

// NewConfig loads a YAML file over the defaults, then applies environment
// overrides. An empty path skips the file.
func NewConfig(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		// 1. Read the YAML file content
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}

		// 2. Unmarshal over the defaults
		if err := yaml.Unmarshal(data, config.MConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	// 3. Environment wins over the file
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file '%s': %w", path, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides fields from PARAMSERVER_* variables.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"HOST":                 &c.Host,
		"LOG_LEVEL":            &c.LogLevel,
		"PROVIDER":             &c.DataSource.Provider,
		"BASE_URL":             &c.DataSource.BaseURL,
		"DB_TYPE":              &c.Storage.DBType,
		"DB_PATH":              &c.Storage.DBPath,
		"DB_CONNECTION_STRING": &c.Storage.DBConnectionString,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PORT":                  &c.Port,
		"DEFAULT_YEARS":         &c.DefaultYears,
		"READ_TIMEOUT_SECONDS":  &c.ReadTimeoutSeconds,
		"FETCH_TIMEOUT_SECONDS": &c.FetchTimeoutSeconds,
		"MAX_CONNECTIONS":       &c.MaxConnections,
		"ADMIN_PORT":            &c.Admin.Port,
		"GRPC_PORT":             &c.Grpc.Port,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return helpers.NewConfigurationError("%s%s must be an integer, got %q", EnvPrefix, key, v)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"ADMIN_ENABLED": &c.Admin.Enabled,
		"GRPC_ENABLED":  &c.Grpc.Enabled,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return helpers.NewConfigurationError("%s%s must be a boolean, got %q", EnvPrefix, key, v)
		}
		*dst = b
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs configuration validation
func (c *Config) Validate() error {
	if err := validator.New().Struct(c.MConfig); err != nil {
		return helpers.NewConfigurationError("%v", err)
	}

	if c.Admin.Enabled && c.Admin.Port == 0 && c.Admin.Host == "" {
		return helpers.NewConfigurationError("admin server enabled without an address")
	}
	if c.Grpc.Enabled && c.Grpc.Port == 0 && c.Grpc.Host == "" {
		return helpers.NewConfigurationError("grpc server enabled without an address")
	}

	if c.DataSource.Provider == "stored" {
		switch c.Storage.DBType {
		case "sqlite":
			if c.Storage.DBPath == "" {
				return helpers.NewConfigurationError("database path cannot be empty for sqlite")
			}
		case "postgres":
			if c.Storage.DBConnectionString == "" {
				return helpers.NewConfigurationError("connection string cannot be empty for postgres")
			}
		default:
			return helpers.NewConfigurationError("stored provider requires storage.db_type")
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Address is the host:port the parameter listener binds.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// -----------------------------------------------------------------------------

// ReadTimeout is zero when the receive is unbounded.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// -----------------------------------------------------------------------------

// FetchTimeout is zero when the upstream fetch is unbounded.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
