// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Transports TransportConfig  `mapstructure:"transports"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch"`
	Editor     EditorConfig     `mapstructure:"editor"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	// DeliveryLogIndex receives terminal message statuses for audit/search.
	DeliveryLogIndex string `mapstructure:"delivery_log_index"`
}

// TransportConfig holds settings for the delivery collaborators.
type TransportConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled         bool   `mapstructure:"enabled"`
			DefaultSenderID string `mapstructure:"default_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// DispatchConfig holds settings for the bulk dispatch orchestrator.
type DispatchConfig struct {
	Workers       int `mapstructure:"workers"`
	QueueSize     int `mapstructure:"queue_size"`
	MaxRecipients int `mapstructure:"max_recipients"`
	SendTimeout   int `mapstructure:"send_timeout"` // milliseconds
	SnapshotTTL   int `mapstructure:"snapshot_ttl"` // seconds, redis job snapshots
}

// EditorConfig carries editing-surface flags that used to live in process-wide
// state; it is threaded explicitly through the components that need it.
type EditorConfig struct {
	SidebarCollapsed bool   `mapstructure:"sidebar_collapsed"`
	DefaultFont      string `mapstructure:"default_font"`
	CanvasWidthPx    int    `mapstructure:"canvas_width_px"`
	CanvasHeightPx   int    `mapstructure:"canvas_height_px"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
