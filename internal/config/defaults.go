package config

import (
	"runtime"
)

// PlatformDefaults returns platform-specific default values
type PlatformDefaults struct {
	LogFile    string
	ConfigPath string
}

// GetPlatformDefaults returns platform-specific defaults based on runtime.GOOS
func GetPlatformDefaults() PlatformDefaults {
	switch runtime.GOOS {
	case "windows":
		return PlatformDefaults{
			LogFile:    `C:\ProgramData\OpsReport\opsreport.log`,
			ConfigPath: `C:\ProgramData\OpsReport\config.yaml`,
		}
	default:
		// The report pipelines target Windows estates, but the binary
		// itself runs anywhere (development, CI)
		return PlatformDefaults{
			LogFile:    "/var/log/opsreport/opsreport.log",
			ConfigPath: "/etc/opsreport/config.yaml",
		}
	}
}

// GetDefaultConfigPath returns the platform-specific default config path
func GetDefaultConfigPath() string {
	return GetPlatformDefaults().ConfigPath
}

// UpdateConfigDefaults updates viper defaults with platform-specific values
// This should be called from setDefaults() in config.go
func UpdateConfigDefaults(v interface{}) {
	type viper interface {
		SetDefault(key string, value interface{})
	}

	if viperInstance, ok := v.(viper); ok {
		defaults := GetPlatformDefaults()

		viperInstance.SetDefault("logging.file", defaults.LogFile)
	}
}
