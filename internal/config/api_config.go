package config

import (
	"strconv"
	"strings"
	"time"
)

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv("API_BASE_URL", "http://localhost:3001/api/v1"), "/")
}

func (API) GetRequestTimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 30*time.Second)
}

// GetRateLimit is requests per second; zero disables client side limiting.
func (API) GetRateLimit() float64 {
	if f, err := strconv.ParseFloat(GetEnv("API_RATE_LIMIT", "0"), 64); err == nil {
		return f
	}
	return 0
}

func (API) GetRateBurst() int {
	return GetEnvInt("API_RATE_BURST", 10)
}

func (API) GetStatisticsCacheTTL() time.Duration {
	return GetEnvDuration("STATISTICS_CACHE_TTL", 30*time.Second)
}
