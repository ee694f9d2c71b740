package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	APIConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetCredentialFile() string
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetRateLimit() float64
	GetRateBurst() int
	GetStatisticsCacheTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	API
	Security
}

func New() Config {
	return mainConfig{}
}
