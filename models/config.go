package models

import "time"

// Config holds all configuration for the application
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`
	AppHost    string `mapstructure:"app_host"`
	AppPort    string `mapstructure:"app_port"`

	// Remote backend
	APIBaseURL string `mapstructure:"api_base_url"`

	// Browser session
	SessionSecret        string        `mapstructure:"session_secret"`
	SessionCookieName    string        `mapstructure:"session_cookie_name"`
	SessionTTL           time.Duration `mapstructure:"session_ttl"`
	SessionIdleTimeout   time.Duration `mapstructure:"session_idle_timeout"`
	SessionSweepSchedule string        `mapstructure:"session_sweep_schedule"`
	SecureCookies        bool          `mapstructure:"secure_cookies"`
	CSRFKey              string        `mapstructure:"csrf_key"`

	// CLI token storage
	TokenDir string `mapstructure:"token_dir"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Addr returns the listen address of the console server
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.AppPort
}
