package config

import "time"

type SecurityConfig interface {
	GetRetryUnsafeMethods() bool
	GetRefreshRetries() uint64
	GetStubAdminPassword() string
	GetStubUserPassword() string
	GetSigningKeyFile() string
	GetRevocationSweepInterval() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetRetryUnsafeMethods re-sends POST/PUT/PATCH/DELETE after a 401 refresh.
func (Security) GetRetryUnsafeMethods() bool {
	return GetEnvBool("API_RETRY_UNSAFE_METHODS", false)
}

// GetRefreshRetries bounds backoff retries of the token endpoint on transport errors.
func (Security) GetRefreshRetries() uint64 {
	return uint64(max(GetEnvInt("TOKEN_REFRESH_RETRIES", 0), 0))
}

func (Security) GetStubAdminPassword() string {
	return GetEnv("STUB_ADMIN_PASSWORD", "AdminPassw0rd!")
}

func (Security) GetStubUserPassword() string {
	return GetEnv("STUB_USER_PASSWORD", "UserPassw0rd!")
}

// GetSigningKeyFile is where the stub keeps its RSA key. Empty means a fresh
// key per process.
func (Security) GetSigningKeyFile() string {
	return GetEnv("STUB_SIGNING_KEY_FILE", "")
}

func (Security) GetRevocationSweepInterval() time.Duration {
	return GetEnvDuration("STUB_REVOCATION_SWEEP", time.Minute)
}
