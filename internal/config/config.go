package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// EnvPrefix prefixes environment overrides, e.g. TAXDESK_API_BASE_URL
	EnvPrefix = "TAXDESK"
)

// Config keys
const (
	KeyBaseURL            = "api.base_url"
	KeyTimeout            = "api.timeout"
	KeyHeaders            = "api.headers"
	KeyCAFile             = "api.ca_file"
	KeyCertFile           = "api.cert_file"
	KeyKeyFile            = "api.key_file"
	KeyInsecureSkipVerify = "api.insecure_skip_verify"
	KeyTheme              = "tui.theme"
	KeyHistoryEnabled     = "history.enabled"
	KeyLogLevel           = "log.level"
)

var (
	// ConfigDir is the global configuration directory (~/.taxdesk)
	ConfigDir string

	// ConfigFile is the YAML config file read by viper
	ConfigFile string

	// DatabasePath is the SQLite database file for the edit history
	DatabasePath string

	// LogFile receives structured logs while the TUI owns the terminal
	LogFile string

	// KeybindsFile holds user keybinding overrides (JSON with comments)
	KeybindsFile string
)

// Settings is the resolved configuration
type Settings struct {
	BaseURL            string
	Timeout            time.Duration
	Headers            map[string]string
	CAFile             string
	CertFile           string
	KeyFile            string
	InsecureSkipVerify bool
	Theme              string
	HistoryEnabled     bool
	LogLevel           string
}

// HasTLS reports whether any TLS option is set
func (s Settings) HasTLS() bool {
	return s.CAFile != "" || s.CertFile != "" || s.KeyFile != "" || s.InsecureSkipVerify
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, "http://localhost:3000")
	v.SetDefault(KeyTimeout, "0s")
	v.SetDefault(KeyHeaders, map[string]string{})
	v.SetDefault(KeyInsecureSkipVerify, false)
	v.SetDefault(KeyTheme, "light")
	v.SetDefault(KeyHistoryEnabled, true)
	v.SetDefault(KeyLogLevel, "info")
}

// Initialize sets up the configuration directory and reads the config file.
// It creates ~/.taxdesk/ if it doesn't exist. cfgFile overrides the default
// config location when non-empty.
func Initialize(cfgFile string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	return InitializeAt(filepath.Join(homeDir, ".taxdesk"), cfgFile)
}

// InitializeAt is Initialize rooted at dir instead of the home directory
func InitializeAt(dir string, cfgFile string) error {
	ConfigDir = dir
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	DatabasePath = filepath.Join(ConfigDir, "taxdesk.db")
	LogFile = filepath.Join(ConfigDir, "taxdesk.log")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.jsonc")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if cfgFile != "" {
		ConfigFile = cfgFile
	}

	viper.Reset()
	SetDefaults(viper.GetViper())
	viper.SetConfigFile(ConfigFile)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", ConfigFile, err)
	}

	return nil
}

// Load resolves the settings from the global viper instance
func Load() (Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom resolves the settings from v
func LoadFrom(v *viper.Viper) (Settings, error) {
	timeout, err := parseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return Settings{}, err
	}

	theme := strings.ToLower(v.GetString(KeyTheme))
	if theme != "light" && theme != "dark" {
		return Settings{}, fmt.Errorf("%s must be 'light' or 'dark', got %q", KeyTheme, theme)
	}

	return Settings{
		BaseURL:            v.GetString(KeyBaseURL),
		Timeout:            timeout,
		Headers:            v.GetStringMapString(KeyHeaders),
		CAFile:             expandHome(v.GetString(KeyCAFile)),
		CertFile:           expandHome(v.GetString(KeyCertFile)),
		KeyFile:            expandHome(v.GetString(KeyKeyFile)),
		InsecureSkipVerify: v.GetBool(KeyInsecureSkipVerify),
		Theme:              theme,
		HistoryEnabled:     v.GetBool(KeyHistoryEnabled),
		LogLevel:           v.GetString(KeyLogLevel),
	}, nil
}

// SaveTheme persists the theme preference to the config file. Only the
// file's own contents are rewritten; defaults and env overrides stay out.
func SaveTheme(name string) error {
	viper.Set(KeyTheme, name)

	v := viper.New()
	v.SetConfigFile(ConfigFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read config file %s: %w", ConfigFile, err)
		}
	}
	v.Set(KeyTheme, name)

	if err := v.WriteConfigAs(ConfigFile); err != nil {
		return fmt.Errorf("failed to save theme preference: %w", err)
	}
	return nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", KeyTimeout, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", KeyTimeout)
	}
	return d, nil
}

// expandHome expands a leading ~/ to the home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}
