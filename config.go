package capsule

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

func setDefaults() {
	viper.SetDefault("service_name", "capsulecrm-go")
	viper.SetDefault("capsule_base_url", "https://api.capsulecrm.com")
	viper.SetDefault("capsule_api_token", "")
	viper.SetDefault("http_timeout", "30s")
	viper.SetDefault("user_agent", "capsulecrm-go")
}

// Config holds everything a Connection needs to reach the CapsuleCRM API.
// It is passed to NewConnection explicitly; nothing here is global.
type Config struct {
	// ServiceName tags every log line the Connection writes
	ServiceName string
	BaseURL     string
	APIToken    string
	Timeout     time.Duration
	UserAgent   string
}

// LoadConfig reads the connection settings from viper, falling back to
// defaults. Environment variables such as CAPSULE_API_TOKEN override them.
func LoadConfig() Config {
	setDefaults()
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return Config{
		ServiceName: viper.GetString("service_name"),
		BaseURL:     viper.GetString("capsule_base_url"),
		APIToken:    viper.GetString("capsule_api_token"),
		Timeout:     viper.GetDuration("http_timeout"),
		UserAgent:   viper.GetString("user_agent"),
	}
}

// Validate checks the base URL is usable
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("capsule base url is not set")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.Wrapf(err, "parsing capsule base url %q", c.BaseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.Errorf("capsule base url %q must be absolute", c.BaseURL)
	}
	return nil
}
