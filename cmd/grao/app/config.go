package app

import (
	stderrors "errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
)

// Cache backends.
const (
	BackendSQLite = "sqlite"
	BackendFiles  = "files"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Inputs and outputs
	Sources      string
	ProcessedDir string
	MatchedDir   string
	CombinedDir  string
	ExportXLSX   bool
	MetricsFile  string

	// Disambiguation cache
	CacheBackend string
	CachePath    string

	// Remote services
	DirectoryURL  string
	DirectoryRate float64
	HTTPTimeout   time.Duration
	Encoding      string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (GRAO_*)
// 3. .env files
// 4. Config file (grao.yaml in . or $HOME, or configFile when set)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GRAO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "failed to read "+configFile, err)
		}
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName("grao")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "failed to read grao.yaml", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Sources:      v.GetString("sources"),
		ProcessedDir: v.GetString("processed_dir"),
		MatchedDir:   v.GetString("matched_dir"),
		CombinedDir:  v.GetString("combined_dir"),
		ExportXLSX:   v.GetBool("export.xlsx"),
		MetricsFile:  v.GetString("metrics.file"),

		CacheBackend: strings.ToLower(v.GetString("cache.backend")),
		CachePath:    v.GetString("cache.path"),

		DirectoryURL:  v.GetString("directory.url"),
		DirectoryRate: v.GetFloat64("directory.rate"),
		HTTPTimeout:   v.GetDuration("http.timeout"),
		Encoding:      v.GetString("encoding"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources", "config/data_config.json")
	v.SetDefault("processed_dir", "grao_data")
	v.SetDefault("matched_dir", "matched_data")
	v.SetDefault("combined_dir", "combined_tables")
	v.SetDefault("export.xlsx", false)
	v.SetDefault("cache.backend", BackendSQLite)
	v.SetDefault("cache.path", "pickled_data")
	v.SetDefault("directory.url", constants.DirectoryURL)
	v.SetDefault("directory.rate", constants.DirectoryRateLimit)
	v.SetDefault("http.timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("encoding", constants.SourceEncoding)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks values that cannot be corrected later.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case BackendSQLite, BackendFiles:
	default:
		return errors.NewValidationError("cache.backend", c.CacheBackend, "must be sqlite or files")
	}
	if c.Encoding == "" {
		return errors.NewValidationError("encoding", c.Encoding, "character set cannot be empty")
	}
	if c.HTTPTimeout < 0 {
		return errors.NewValidationError("http.timeout", c.HTTPTimeout, "must not be negative")
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}
