package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full configuration for both report pipelines
type Config struct {
	TestMode  bool          `mapstructure:"test_mode"`
	StyleFile string        `mapstructure:"style_file"`
	Mail      MailConfig    `mapstructure:"mail"`
	Logging   LoggingConfig `mapstructure:"logging"`
	RDS       RDSConfig     `mapstructure:"rds"`
	Certs     CertsConfig   `mapstructure:"certs"`
}

// MailConfig describes the SMTP relay and addressing for report delivery
type MailConfig struct {
	From          string `mapstructure:"from"`
	To            string `mapstructure:"to"`
	RelayHost     string `mapstructure:"relay_host"`
	RelayPort     int    `mapstructure:"relay_port"`
	TestRecipient string `mapstructure:"test_recipient"`
}

// LoggingConfig controls the zap/lumberjack logger
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// RDSConfig configures the license report pipeline
type RDSConfig struct {
	Subject string `mapstructure:"subject"`
	// LicenseServer is the license server to query. Empty means the
	// local machine's WMI namespace.
	LicenseServer string `mapstructure:"license_server"`
}

// CertsConfig configures the certificate expiry pipeline
type CertsConfig struct {
	Subject        string      `mapstructure:"subject"`
	IssuerContains string      `mapstructure:"issuer_contains"`
	ThresholdDays  int         `mapstructure:"threshold_days"`
	LDAP           LDAPConfig  `mapstructure:"ldap"`
	WinRM          WinRMConfig `mapstructure:"winrm"`
}

// LDAPConfig describes the directory connection for server inventory
type LDAPConfig struct {
	Address      string `mapstructure:"address"` // ldap://dc01.example.com:389
	BaseDN       string `mapstructure:"base_dn"`
	BindDN       string `mapstructure:"bind_dn"`
	BindPassword string `mapstructure:"bind_password"`
}

// WinRMConfig describes the remote-management connection used for
// per-host certificate collection
type WinRMConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Port     int    `mapstructure:"port"`
	// PingTimeout bounds both reachability probes: the echo request
	// and the WinRM port dial
	PingTimeout time.Duration `mapstructure:"ping_timeout"`
	// Timeout bounds the remote collection command itself
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads and validates configuration from the given path.
// An empty path falls back to the platform default location.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = GetDefaultConfigPath()
	}
	v.SetConfigFile(path)

	setDefaults(v)

	// Secrets can be supplied via environment instead of the config file
	v.SetEnvPrefix("OPSREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("certs.ldap.bind_password", "OPSREPORT_LDAP_PASSWORD")
	v.BindEnv("certs.winrm.password", "OPSREPORT_WINRM_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Stylesheet defaults to style.css next to the config file
	if cfg.StyleFile == "" {
		cfg.StyleFile = filepath.Join(filepath.Dir(path), "style.css")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("test_mode", false)
	v.SetDefault("mail.relay_port", 25)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("rds.subject", "RDS License Report")
	v.SetDefault("certs.subject", "Certificate Expiry Report")
	v.SetDefault("certs.threshold_days", 90)
	v.SetDefault("certs.winrm.port", 5985)
	v.SetDefault("certs.winrm.ping_timeout", 3*time.Second)
	v.SetDefault("certs.winrm.timeout", 60*time.Second)

	UpdateConfigDefaults(v)
}

// Validate checks settings shared by both pipelines
func (c *Config) Validate() error {
	if c.Mail.From == "" {
		return fmt.Errorf("mail.from is required")
	}
	if c.Mail.To == "" {
		return fmt.Errorf("mail.to is required")
	}
	if c.Mail.RelayHost == "" {
		return fmt.Errorf("mail.relay_host is required")
	}
	if c.Mail.RelayPort < 1 || c.Mail.RelayPort > 65535 {
		return fmt.Errorf("mail.relay_port must be between 1 and 65535, got %d", c.Mail.RelayPort)
	}
	if c.TestMode && c.Mail.TestRecipient == "" {
		return fmt.Errorf("mail.test_recipient is required when test_mode is enabled")
	}
	return nil
}

// ValidateCerts checks settings required by the certificate expiry
// pipeline only. Called by the cert-expiry command, not by Load, so a
// license-only deployment can leave the certs section empty.
func (c *Config) ValidateCerts() error {
	if c.Certs.IssuerContains == "" {
		return fmt.Errorf("certs.issuer_contains is required")
	}
	if c.Certs.ThresholdDays <= 0 {
		return fmt.Errorf("certs.threshold_days must be positive, got %d", c.Certs.ThresholdDays)
	}
	if c.Certs.LDAP.Address == "" {
		return fmt.Errorf("certs.ldap.address is required")
	}
	if c.Certs.LDAP.BaseDN == "" {
		return fmt.Errorf("certs.ldap.base_dn is required")
	}
	if c.Certs.WinRM.Port < 1 || c.Certs.WinRM.Port > 65535 {
		return fmt.Errorf("certs.winrm.port must be between 1 and 65535, got %d", c.Certs.WinRM.Port)
	}
	return nil
}
