package configuration

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// YouTubeConfig represents YouTube Data API configuration
type YouTubeConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	AccessToken  string `mapstructure:"access_token"`
	RefreshToken string `mapstructure:"refresh_token"`
	APIKey       string `mapstructure:"api_key"`
	Endpoint     string `mapstructure:"endpoint"`
	CacheTTL     time.Duration
}

// HasCredentials reports whether either an API key or an OAuth token pair is available.
func (c *YouTubeConfig) HasCredentials() bool {
	return c.APIKey != "" || (c.AccessToken != "" && c.RefreshToken != "")
}

// GetYouTubeConfig returns YouTube configuration from JSON config with environment variable fallback
func GetYouTubeConfig() *YouTubeConfig {
	ttl := C.YouTube.CacheTTLMinutes
	if ttl <= 0 {
		ttl = 24 * 60
	}
	config := &YouTubeConfig{
		ClientID:     getConfigValue(C.YouTube.ClientID, "YOUTUBE_CLIENT_ID", ""),
		ClientSecret: getConfigValue(C.YouTube.ClientSecret, "YOUTUBE_CLIENT_SECRET", ""),
		RedirectURL:  getConfigValue(C.YouTube.RedirectURI, "YOUTUBE_REDIRECT_URL", ""),
		AccessToken:  getEnv("YOUTUBE_ACCESS_TOKEN", ""),
		RefreshToken: getEnv("YOUTUBE_REFRESH_TOKEN", ""),
		APIKey:       getConfigValue(C.YouTube.APIKey, "YOUTUBE_API_KEY", ""),
		Endpoint:     getConfigValue(C.YouTube.Endpoint, "YOUTUBE_ENDPOINT", ""),
		CacheTTL:     time.Duration(ttl) * time.Minute,
	}

	// Fallback: if access/refresh tokens are empty, attempt to read token.json
	if config.AccessToken == "" || config.RefreshToken == "" {
		if data, err := os.ReadFile("token.json"); err == nil {
			var tokenFile struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
			}
			if jsonErr := json.Unmarshal(data, &tokenFile); jsonErr == nil {
				if config.AccessToken == "" && tokenFile.AccessToken != "" {
					config.AccessToken = tokenFile.AccessToken
				}
				if config.RefreshToken == "" && tokenFile.RefreshToken != "" {
					config.RefreshToken = tokenFile.RefreshToken
				}
			}
		}
	}

	return config
}

// getConfigValue gets value from environment first, then config, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Otherwise use config value if set and not a placeholder
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
