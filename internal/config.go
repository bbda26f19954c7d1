package internal

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const appName = "playlist-downloader"

// Backend names
const (
	BackendNative = "native"
	BackendYTDLP  = "ytdlp"
)

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Config holds application settings
type Config struct {
	// User configurable settings
	OutputDir          string
	DownloadDir        string
	SkipExisting       bool
	Covers             bool
	Backend            string
	CookiesFile        string
	CookiesFromBrowser string
	Comment            string
	HTTPTimeout        time.Duration
	Archive            bool
	WriteM3U           bool
	Verbose            bool
	Quiet              bool
	LogEnabled         bool

	// Fixed XDG paths (not configurable)
	ConfigDir   string
	DataDir     string
	CacheDir    string
	TempDir     string
	ArchivePath string
}

//go:embed config.toml
var defaultFS embed.FS

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// NewViper returns a viper instance with defaults, config file lookup and
// environment binding set up. configFile overrides the lookup when set.
func NewViper(configDir, configFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault("output_dir", "")
	v.SetDefault("download_dir", "")
	v.SetDefault("skip_existing", false)
	v.SetDefault("covers", true)
	v.SetDefault("backend", BackendNative)
	v.SetDefault("cookies_file", "")
	v.SetDefault("cookies_from_browser", "")
	v.SetDefault("comment", DefaultComment)
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("archive", false)
	v.SetDefault("write_m3u", false)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("log_enabled", true)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
	}

	v.SetEnvPrefix("PLAYLIST_DOWNLOADER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// InitConfig initializes Viper and loads configuration
func InitConfig(configFile string) (*Config, *viper.Viper) {
	configDir := filepath.Join(xdg.ConfigHome, appName)
	dataDir := filepath.Join(xdg.DataHome, appName)
	cacheDir := filepath.Join(xdg.CacheHome, appName)

	v := NewViper(configDir, configFile)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := ConfigFromViper(v)
	config.ConfigDir = configDir
	config.DataDir = dataDir
	config.CacheDir = cacheDir
	config.TempDir = filepath.Join(cacheDir, "staging")
	config.ArchivePath = filepath.Join(dataDir, "archive.db")

	if config.Verbose {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return config, v
}

// ConfigFromViper reads the user configurable settings out of v
func ConfigFromViper(v *viper.Viper) *Config {
	return &Config{
		OutputDir:          v.GetString("output_dir"),
		DownloadDir:        v.GetString("download_dir"),
		SkipExisting:       v.GetBool("skip_existing"),
		Covers:             v.GetBool("covers"),
		Backend:            strings.ToLower(v.GetString("backend")),
		CookiesFile:        v.GetString("cookies_file"),
		CookiesFromBrowser: v.GetString("cookies_from_browser"),
		Comment:            v.GetString("comment"),
		HTTPTimeout:        v.GetDuration("http_timeout"),
		Archive:            v.GetBool("archive"),
		WriteM3U:           v.GetBool("write_m3u"),
		Verbose:            v.GetBool("verbose"),
		Quiet:              v.GetBool("quiet"),
		LogEnabled:         v.GetBool("log_enabled"),
	}
}

// Validate checks settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendNative, BackendYTDLP:
	default:
		return fmt.Errorf("unsupported backend: %s (supported: %s, %s)", c.Backend, BackendNative, BackendYTDLP)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.CookiesFile != "" && !FileExists(c.CookiesFile) {
		return fmt.Errorf("cookies file not found: %s", c.CookiesFile)
	}
	return nil
}
