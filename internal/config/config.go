package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	DatabaseURL    string
	JWTSecret      string
	JWTIssuer      string
	HTTPListenAddr string
	LogLevel       string
	CORSOrigins    []string
	SiteBaseURL    string
	DevMode        bool

	HubSpotClientID     string
	HubSpotClientSecret string
	HubSpotRedirectURI  string
	HubSpotAuthURL      string
	HubSpotTokenURL     string
	HubSpotAPIBaseURL   string
	HubSpotScopes       string
}

func Load() (*Config, error) {
	origins := getEnv("CORS_ORIGINS", "http://localhost:3000")
	var corsList []string
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			corsList = append(corsList, trimmed)
		}
	}

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "site-api"),
		HTTPListenAddr: getEnv("HTTP_LISTEN_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    corsList,
		SiteBaseURL:    strings.TrimRight(getEnv("SITE_BASE_URL", "http://localhost:3000"), "/"),
		DevMode:        getEnv("DEV_MODE", "") == "true",

		HubSpotClientID:     getEnv("HUBSPOT_CLIENT_ID", ""),
		HubSpotClientSecret: getEnv("HUBSPOT_CLIENT_SECRET", ""),
		HubSpotRedirectURI:  getEnv("HUBSPOT_REDIRECT_URI", ""),
		HubSpotAuthURL:      getEnv("HUBSPOT_AUTH_URL", "https://app.hubspot.com/oauth/authorize"),
		HubSpotTokenURL:     getEnv("HUBSPOT_TOKEN_URL", "https://api.hubapi.com/oauth/v1/token"),
		HubSpotAPIBaseURL:   getEnv("HUBSPOT_API_BASE_URL", "https://api.hubapi.com"),
		HubSpotScopes:       getEnv("HUBSPOT_SCOPES", "crm.objects.contacts.read crm.objects.contacts.write oauth"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.HubSpotClientID == "" {
		missing = append(missing, "HUBSPOT_CLIENT_ID")
	}
	if c.HubSpotClientSecret == "" {
		missing = append(missing, "HUBSPOT_CLIENT_SECRET")
	}
	if c.HubSpotRedirectURI == "" {
		missing = append(missing, "HUBSPOT_REDIRECT_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
