// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/junlend/web/internal/domain/site"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig            `yaml:"server"`
	Site     SiteConfig              `yaml:"site"`
	Rotation RotationConfig          `yaml:"rotation"`
	Wallet   WalletConfig            `yaml:"wallet"`
	Theme    ThemeConfig             `yaml:"theme"`
	Toast    ToastConfig             `yaml:"toast"`
	Admin    AdminConfig             `yaml:"admin"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	Messages MessagesConfig          `yaml:"messages"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr            string      `yaml:"addr" default:":8080"`
	MetricsPath     string      `yaml:"metrics_path" default:"/metrics" validate:"startswith=/"`
	VisitorCookie   string      `yaml:"visitor_cookie" default:"vid" validate:"required"`
	SecureCookies   bool        `yaml:"secure_cookies"`
	ShutdownTimeout int         `yaml:"shutdown_timeout_sec" default:"10" validate:"gte=1"`
	Hooks           HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// SiteConfig represents the static site identity.
type SiteConfig struct {
	Name          string `yaml:"name" default:"JunLend" validate:"required"`
	Description   string `yaml:"description" default:"The smarter way to borrow in DeFi."`
	Emoji         string `yaml:"emoji" default:"🌟"`
	URL           string `yaml:"url" default:"https://junlend.xyz" validate:"required,url"`
	Info          string `yaml:"info" default:"Migrate your lending position in one click."`
	SocialGithub  string `yaml:"social_github" default:"junlend"`
	SocialTwitter string `yaml:"social_twitter" default:"junlend"`
	ThemeColor    string `yaml:"theme_color" default:"#000000" validate:"omitempty,hexcolor"`
}

// RotationConfig represents the rotating protocol label configuration.
type RotationConfig struct {
	Labels   []string `yaml:"labels" validate:"min=1,dive,required"`
	PeriodMs int      `yaml:"period_ms" default:"2500" validate:"gte=100,lte=60000"`
}

// WalletConfig represents wallet session configuration.
type WalletConfig struct {
	StorageKey   string        `yaml:"storage_key" default:"wagmi" validate:"required"`
	Chains       []ChainConfig `yaml:"chains" validate:"min=1,dive"`
	CookieMaxAge int           `yaml:"cookie_max_age_sec" default:"2592000" validate:"gte=0"`
	RateLimitRPS int           `yaml:"rate_limit_rps" default:"5" validate:"gte=1"`
	RateBurst    int           `yaml:"rate_burst" default:"10" validate:"gte=1"`
	// RateLimitMaxKeys bounds the per-visitor limiters kept in memory.
	RateLimitMaxKeys int `yaml:"rate_limit_max_keys" default:"10000" validate:"gte=1"`
	// DisableReconnect renders every request disconnected, ignoring stored sessions.
	DisableReconnect bool `yaml:"disable_reconnect"`
}

// ChainConfig represents a supported chain.
type ChainConfig struct {
	ID   int64  `yaml:"id" validate:"required,gt=0"`
	Name string `yaml:"name" validate:"required"`
}

// ThemeConfig represents theme persistence configuration.
type ThemeConfig struct {
	Default   string `yaml:"default" default:"system" validate:"oneof=system light dark"`
	Cookie    string `yaml:"cookie" default:"theme" validate:"required"`
	Attribute string `yaml:"attribute" default:"class" validate:"oneof=class data-theme"`
}

// ToastConfig represents toast queue configuration.
type ToastConfig struct {
	Limit       int `yaml:"limit" default:"1" validate:"gte=1,lte=10"`
	TTLSec      int `yaml:"ttl_sec" default:"300" validate:"gte=1"`
	MaxVisitors int `yaml:"max_visitors" default:"10000" validate:"gte=1"`
}

// AdminConfig represents admin-related configuration.
type AdminConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// FilterConfig represents a wallet connect filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// MessagesConfig represents user-facing messages.
type MessagesConfig struct {
	Connected          string `yaml:"connected" default:"Wallet connected"`
	Disconnected       string `yaml:"disconnected" default:"Wallet disconnected"`
	DefaultError       string `yaml:"default_error" default:"Something went wrong"`
	InvalidAddress     string `yaml:"invalid_address" default:"That does not look like a wallet address"`
	UnsupportedChain   string `yaml:"unsupported_chain" default:"This network is not supported"`
	ConnectorForbidden string `yaml:"connector_forbidden" default:"This wallet is not supported"`
	ThemeChanged       string `yaml:"theme_changed" default:"Theme updated"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// SetDefaults fills in default values, including the list defaults that
// struct tags cannot express.
func (c *Config) SetDefaults() {
	if len(c.Rotation.Labels) == 0 {
		c.Rotation.Labels = []string{"Aave", "Compound", "Morpho", "Fluid", "Euler"}
	}
	if len(c.Wallet.Chains) == 0 {
		c.Wallet.Chains = []ChainConfig{
			{ID: 1, Name: "Ethereum"},
			{ID: 11155111, Name: "Sepolia"},
		}
	}
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		c.Site.URL = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	seen := make(map[int64]bool, len(c.Wallet.Chains))
	for _, ch := range c.Wallet.Chains {
		if seen[ch.ID] {
			return errors.Newf("duplicate chain id %d", ch.ID)
		}
		seen[ch.ID] = true
	}

	return nil
}

// GetMessage returns the message for the given code.
func (c *Config) GetMessage(code string) string {
	switch code {
	case "connected":
		return c.Messages.Connected
	case "disconnected":
		return c.Messages.Disconnected
	case "invalid_address":
		return c.Messages.InvalidAddress
	case "unsupported_chain":
		return c.Messages.UnsupportedChain
	case "connector_forbidden":
		return c.Messages.ConnectorForbidden
	case "theme_changed":
		return c.Messages.ThemeChanged
	default:
		return c.Messages.DefaultError
	}
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// IsFilterEnabledOr checks if a filter is enabled, returning def when the
// filter is not configured.
func (c *Config) IsFilterEnabledOr(filterName string, def bool) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return def
}

// GetFilterSettings returns the settings for a filter.
func (c *Config) GetFilterSettings(filterName string) map[string]any {
	if f, ok := c.Filters[filterName]; ok {
		return f.Settings
	}
	return nil
}

// RotationPeriod returns the label rotation period.
func (c *Config) RotationPeriod() time.Duration {
	return time.Duration(c.Rotation.PeriodMs) * time.Millisecond
}

// ShutdownGrace returns how long shutdown waits for live views and requests.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}

// ToastTTL returns how long undelivered toasts are kept.
func (c *Config) ToastTTL() time.Duration {
	return time.Duration(c.Toast.TTLSec) * time.Second
}

// SiteInfo builds the site identity passed to renderers.
func (c *Config) SiteInfo() *site.Info {
	return &site.Info{
		Name:          c.Site.Name,
		Description:   c.Site.Description,
		Emoji:         c.Site.Emoji,
		URL:           c.Site.URL,
		Info:          c.Site.Info,
		SocialGithub:  c.Site.SocialGithub,
		SocialTwitter: c.Site.SocialTwitter,
		ThemeColor:    c.Site.ThemeColor,
	}
}

// ChainIDs returns the configured chain ids in declaration order.
func (c *Config) ChainIDs() []int64 {
	ids := make([]int64, len(c.Wallet.Chains))
	for i, ch := range c.Wallet.Chains {
		ids[i] = ch.ID
	}
	return ids
}
