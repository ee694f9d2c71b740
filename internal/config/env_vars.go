package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	portEnvVar      = "PORT"
	appNameVar      = "APP_NAME"
	folderEnvVar    = "KUBEATLAS_HOME"
	credFileEnvVar  = "KUBEATLAS_CREDENTIALS"
	logLevelEnvVar  = "LOG_LEVEL"
	environmentVar  = "ENV"
	defaultAppName  = "kubeatlas"
	credentialsFile = "credentials.json"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8081")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

// GetAppName is the prefix used for persisted credential keys.
func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, defaultAppName)
}

func (e EnvVars) GetDataFolder() string {
	if folder := os.Getenv(folderEnvVar); folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + e.GetAppName()
	}
	return filepath.Join(home, "."+e.GetAppName())
}

func (e EnvVars) GetCredentialFile() string {
	return GetEnv(credFileEnvVar, filepath.Join(e.GetDataFolder(), credentialsFile))
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

func (EnvVars) GetEnv() string {
	return GetEnv(environmentVar, "DEV")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func GetEnvInt(envVar string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(envVar)); err == nil {
		return n
	}
	return defaultValue
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(envVar)); err == nil {
		return b
	}
	return defaultValue
}

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment. Missing files are skipped and existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
