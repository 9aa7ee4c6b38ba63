package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	AI       AIConfig       `mapstructure:"ai"       validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// AIConfig contains the settings for the external AI summarization service.
type AIConfig struct {
	// Endpoint is the URL the ingestion pipeline POSTs document requests to.
	Endpoint string `mapstructure:"endpoint" validate:"required,url"`

	// APIKey is sent on every request in the X-API-Key header.
	APIKey string `mapstructure:"api_key" validate:"required"`

	// TimeoutSeconds bounds each individual call to the AI service.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"required,gt=0"`

	// DefaultQuestion is the prompt used when a request supplies no question.
	DefaultQuestion string `mapstructure:"default_question" validate:"required"`
}
