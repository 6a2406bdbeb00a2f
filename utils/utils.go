package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"orgconsole/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultSessionSecret = "change-this-session-secret-in-production"
	defaultCSRFKey       = "change-this-csrf-key-in-prod-32b"
	csrfKeyLength        = 32
)

// GetConfig read the configuration from environment variables or config files
func GetConfig(configFile string) (*models.Config, error) {
	config, err := Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper.
// An explicit configFile must exist; otherwise config.json is searched for
// and is optional. A .env file in the working directory is loaded first.
func Load(configFile string) (*models.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	flattenNestedConfig(v)

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("app_name", "Organization Console")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8080")

	// Backend defaults
	v.SetDefault("api_base_url", "http://localhost:8000/api")

	// Session defaults
	v.SetDefault("session_secret", defaultSessionSecret)
	v.SetDefault("session_cookie_name", "orgconsole_session")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("session_idle_timeout", 30*time.Minute)
	v.SetDefault("session_sweep_schedule", "0 */5 * * * *")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("csrf_key", defaultCSRFKey)

	// CLI defaults
	v.SetDefault("token_dir", defaultTokenDir())

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

func defaultTokenDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".orgconsole"
	}
	return filepath.Join(home, ".orgconsole")
}

// validate checks if all required configuration is provided
func validate(c *models.Config) error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL must be set")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if len(c.CSRFKey) != csrfKeyLength {
		return fmt.Errorf("CSRF_KEY must be exactly %d bytes", csrfKeyLength)
	}

	if c.AppEnv == "production" {
		if c.SessionSecret == defaultSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be set in production environment")
		}
		if c.CSRFKey == defaultCSRFKey {
			return fmt.Errorf("CSRF_KEY must be set in production environment")
		}
	}

	return nil
}

// flattenNestedConfig flattens the nested JSON structure to flat keys for easier mapping
func flattenNestedConfig(v *viper.Viper) {
	nested := map[string]string{
		// App section
		"app.name":    "app_name",
		"app.version": "app_version",
		"app.env":     "app_env",
		"app.host":    "app_host",
		"app.port":    "app_port",

		// API section
		"api.base_url": "api_base_url",

		// Session section
		"session.secret":         "session_secret",
		"session.cookie_name":    "session_cookie_name",
		"session.ttl":            "session_ttl",
		"session.idle_timeout":   "session_idle_timeout",
		"session.sweep_schedule": "session_sweep_schedule",
		"session.secure_cookies": "secure_cookies",
		"session.csrf_key":       "csrf_key",

		// CLI section
		"cli.token_dir": "token_dir",

		// Logging section
		"logging.level":  "log_level",
		"logging.format": "log_format",
	}

	for from, to := range nested {
		// environment variables win over the config file
		if _, fromEnv := os.LookupEnv(strings.ToUpper(to)); fromEnv {
			continue
		}
		if v.IsSet(from) {
			v.Set(to, v.Get(from))
		}
	}
}

// PrintPrettyJSON takes any struct or map and prints it as pretty JSON
func PrintPrettyJSON(data interface{}) string {
	prettyJSON, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to generate JSON:", err)
		return ""
	}
	return string(prettyJSON)
}
