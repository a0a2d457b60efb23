package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Mail: MailConfig{
			From:      "reports@example.com",
			To:        "admins@example.com",
			RelayHost: "smtp.example.com",
			RelayPort: 25,
		},
	}
}

// TestValidate tests shared configuration validation
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errText string
	}{
		{
			name:    "valid minimal config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing from address",
			mutate:  func(c *Config) { c.Mail.From = "" },
			wantErr: true,
			errText: "mail.from is required",
		},
		{
			name:    "missing to address",
			mutate:  func(c *Config) { c.Mail.To = "" },
			wantErr: true,
			errText: "mail.to is required",
		},
		{
			name:    "missing relay host",
			mutate:  func(c *Config) { c.Mail.RelayHost = "" },
			wantErr: true,
			errText: "mail.relay_host is required",
		},
		{
			name:    "relay port zero",
			mutate:  func(c *Config) { c.Mail.RelayPort = 0 },
			wantErr: true,
			errText: "mail.relay_port must be between",
		},
		{
			name:    "relay port too large",
			mutate:  func(c *Config) { c.Mail.RelayPort = 70000 },
			wantErr: true,
			errText: "mail.relay_port must be between",
		},
		{
			name: "test mode without test recipient",
			mutate: func(c *Config) {
				c.TestMode = true
			},
			wantErr: true,
			errText: "mail.test_recipient is required",
		},
		{
			name: "test mode with test recipient",
			mutate: func(c *Config) {
				c.TestMode = true
				c.Mail.TestRecipient = "me@example.com"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.errText != "" && !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.errText)
			}
		})
	}
}

// TestValidateCerts tests certificate-pipeline validation
func TestValidateCerts(t *testing.T) {
	base := func() *Config {
		cfg := validConfig()
		cfg.Certs = CertsConfig{
			IssuerContains: "Acme Corp CA",
			ThresholdDays:  90,
			LDAP: LDAPConfig{
				Address: "ldap://dc01.example.com:389",
				BaseDN:  "DC=example,DC=com",
			},
			WinRM: WinRMConfig{Port: 5985},
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errText string
	}{
		{
			name:    "valid certs config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing issuer token",
			mutate:  func(c *Config) { c.Certs.IssuerContains = "" },
			wantErr: true,
			errText: "certs.issuer_contains is required",
		},
		{
			name:    "zero threshold",
			mutate:  func(c *Config) { c.Certs.ThresholdDays = 0 },
			wantErr: true,
			errText: "threshold_days must be positive",
		},
		{
			name:    "negative threshold",
			mutate:  func(c *Config) { c.Certs.ThresholdDays = -7 },
			wantErr: true,
			errText: "threshold_days must be positive",
		},
		{
			name:    "missing ldap address",
			mutate:  func(c *Config) { c.Certs.LDAP.Address = "" },
			wantErr: true,
			errText: "certs.ldap.address is required",
		},
		{
			name:    "missing base dn",
			mutate:  func(c *Config) { c.Certs.LDAP.BaseDN = "" },
			wantErr: true,
			errText: "certs.ldap.base_dn is required",
		},
		{
			name:    "winrm port out of range",
			mutate:  func(c *Config) { c.Certs.WinRM.Port = 0 },
			wantErr: true,
			errText: "certs.winrm.port must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.ValidateCerts()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCerts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.errText != "" && !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("ValidateCerts() error = %q, want substring %q", err.Error(), tt.errText)
			}
		})
	}
}

// TestLoad tests loading a config file from disk
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
mail:
  from: reports@example.com
  to: admins@example.com
  relay_host: smtp.example.com
rds:
  license_server: licsrv01.example.com
certs:
  issuer_contains: Acme Corp CA
  threshold_days: 30
  ldap:
    address: ldap://dc01.example.com:389
    base_dn: DC=example,DC=com
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Mail.From != "reports@example.com" {
		t.Errorf("Mail.From = %q, want reports@example.com", cfg.Mail.From)
	}
	if cfg.Mail.RelayPort != 25 {
		t.Errorf("Mail.RelayPort = %d, want default 25", cfg.Mail.RelayPort)
	}
	if cfg.Certs.ThresholdDays != 30 {
		t.Errorf("Certs.ThresholdDays = %d, want 30", cfg.Certs.ThresholdDays)
	}
	if cfg.Certs.WinRM.Port != 5985 {
		t.Errorf("Certs.WinRM.Port = %d, want default 5985", cfg.Certs.WinRM.Port)
	}
	if cfg.Certs.WinRM.PingTimeout != 3*time.Second {
		t.Errorf("Certs.WinRM.PingTimeout = %v, want 3s", cfg.Certs.WinRM.PingTimeout)
	}
	if cfg.RDS.Subject != "RDS License Report" {
		t.Errorf("RDS.Subject = %q, want default", cfg.RDS.Subject)
	}
	if cfg.RDS.LicenseServer != "licsrv01.example.com" {
		t.Errorf("RDS.LicenseServer = %q, want licsrv01.example.com", cfg.RDS.LicenseServer)
	}

	// style_file defaults to style.css beside the config file
	want := filepath.Join(dir, "style.css")
	if cfg.StyleFile != want {
		t.Errorf("StyleFile = %q, want %q", cfg.StyleFile, want)
	}
}

// TestLoadMissingFile tests that a missing config file is an error
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}
