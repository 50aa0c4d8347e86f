package models

// MConfig Structure
type MConfig struct {
	Name                string            `yaml:"name" validate:"required"`
	Host                string            `yaml:"host" validate:"required"`
	Port                int               `yaml:"port" validate:"gte=0,lte=65535"`
	LogLevel            string            `yaml:"log_level" validate:"omitempty,oneof=DEBUG INFO WARNING ERROR"`
	DefaultYears        int               `yaml:"default_years" validate:"gte=1"`
	ReadBufferBytes     int               `yaml:"read_buffer_bytes" validate:"gte=16,lte=65536"`
	ReadTimeoutSeconds  int               `yaml:"read_timeout_seconds" validate:"gte=0"`
	FetchTimeoutSeconds int               `yaml:"fetch_timeout_seconds" validate:"gte=0"`
	MaxConnections      int               `yaml:"max_connections" validate:"gte=0"` // 0 = unbounded
	Admin               MEndpointConfig   `yaml:"admin"`
	Grpc                MEndpointConfig   `yaml:"grpc"`
	Storage             MStorageConfig    `yaml:"storage"`
	Network             MNetworkConfig    `yaml:"network"`
	DataSource          MDataSourceConfig `yaml:"data_source"`
}

type MEndpointConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port" validate:"gte=0,lte=65535"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type" validate:"omitempty,oneof=sqlite postgres"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout" validate:"gte=1"`
	MaxRetries     int      `yaml:"retries" validate:"gte=0"`
	UserAgent      string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	Provider  string `yaml:"provider" validate:"required,oneof=yahoo financego stored"`
	BaseURL   string `yaml:"base_url"` // Optional, yahoo only
	MinPrices int    `yaml:"min_prices" validate:"gte=0"`
}
