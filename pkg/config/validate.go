package config

import (
	"fmt"
	"strings"
)

// ValidateCore ensures critical configuration is present before the server
// starts taking traffic.
func (c *Config) ValidateCore() error {
	var missing []string

	if strings.TrimSpace(c.Server.Port) == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if strings.TrimSpace(c.Redis.URL) == "" {
		missing = append(missing, "REDIS_URL")
	}
	if strings.TrimSpace(c.Gateway.BaseURL) == "" {
		missing = append(missing, "GATEWAY_BASE_URL")
	}
	if strings.TrimSpace(c.Gateway.MerchantName) == "" {
		missing = append(missing, "MERCHANT_NAME")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		missing = append(missing, "SESSION_COOKIE_NAME")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}
