package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Sheets    SheetsConfig    `yaml:"sheets" mapstructure:"sheets"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Apify     ApifyConfig     `yaml:"apify" mapstructure:"apify"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Proxycurl ProxycurlConfig `yaml:"proxycurl" mapstructure:"proxycurl"`
	Images    ImagesConfig    `yaml:"images" mapstructure:"images"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SheetsConfig configures the tabular source.
type SheetsConfig struct {
	Provider        string `yaml:"provider" mapstructure:"provider"`
	AccessToken     string `yaml:"access_token" mapstructure:"access_token"`
	SheetsBaseURL   string `yaml:"sheets_base_url" mapstructure:"sheets_base_url"`
	DriveBaseURL    string `yaml:"drive_base_url" mapstructure:"drive_base_url"`
	FolderID        string `yaml:"folder_id" mapstructure:"folder_id"`
	WorkbookDir     string `yaml:"workbook_dir" mapstructure:"workbook_dir"`
	PrimarySheet    string `yaml:"primary_sheet" mapstructure:"primary_sheet"`
	AuxSuffix       string `yaml:"aux_suffix" mapstructure:"aux_suffix"`
	Range           string `yaml:"range" mapstructure:"range"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
}

// SearchConfig configures web search.
type SearchConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	MaxResults        int     `yaml:"max_results" mapstructure:"max_results"`
	AboutMaxResults   int     `yaml:"about_max_results" mapstructure:"about_max_results"`
	RecencyDays       int     `yaml:"recency_days" mapstructure:"recency_days"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	MaxConcurrent     int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ApifyConfig holds Apify credentials.
type ApifyConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	ActorID string `yaml:"actor_id" mapstructure:"actor_id"`
}

// JinaConfig holds Jina AI credentials.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// ProxycurlConfig holds profile provider credentials and limits.
type ProxycurlConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	MaxConcurrent     int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ImagesConfig configures localised image storage.
type ImagesConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`
	URLPrefix     string `yaml:"url_prefix" mapstructure:"url_prefix"`
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// PipelineConfig tunes batching.
type PipelineConfig struct {
	SmallBatchSize      int    `yaml:"small_batch_size" mapstructure:"small_batch_size"`
	LargeBatchThreshold int    `yaml:"large_batch_threshold" mapstructure:"large_batch_threshold"`
	RowConcurrency      int    `yaml:"row_concurrency" mapstructure:"row_concurrency"`
	StreamIdleMinutes   int    `yaml:"stream_idle_minutes" mapstructure:"stream_idle_minutes"`
	KeywordsFile        string `yaml:"keywords_file" mapstructure:"keywords_file"`
}

var (
	storeDrivers = []string{"sqlite", "postgres"}
	logFormats   = []string{"json", "console"}
)

// Load reads configuration from config.yaml (optional) and ENRICH_*
// environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "contacts.db")
	v.SetDefault("sheets.provider", "google")
	v.SetDefault("sheets.access_token", "")
	v.SetDefault("sheets.sheets_base_url", "https://sheets.googleapis.com/v4")
	v.SetDefault("sheets.drive_base_url", "https://www.googleapis.com/drive/v3")
	v.SetDefault("sheets.folder_id", "")
	v.SetDefault("sheets.workbook_dir", "workbooks")
	v.SetDefault("sheets.primary_sheet", "New Connections")
	v.SetDefault("sheets.aux_suffix", "pq")
	v.SetDefault("sheets.range", "A:ZZ")
	v.SetDefault("sheets.cache_ttl_minutes", 60)
	v.SetDefault("search.provider", "apify")
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.about_max_results", 5)
	v.SetDefault("search.recency_days", 365)
	v.SetDefault("search.requests_per_second", 2)
	v.SetDefault("search.max_concurrent", 2)
	v.SetDefault("apify.token", "")
	v.SetDefault("apify.base_url", "https://api.apify.com")
	v.SetDefault("apify.actor_id", "nFJndFXA5zjCTuudP")
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("proxycurl.key", "")
	v.SetDefault("proxycurl.base_url", "https://nubela.co/proxycurl")
	v.SetDefault("proxycurl.requests_per_second", 1)
	v.SetDefault("proxycurl.max_concurrent", 2)
	v.SetDefault("images.dir", "static/images")
	v.SetDefault("images.url_prefix", "/static/images")
	v.SetDefault("images.max_concurrent", 4)
	v.SetDefault("pipeline.small_batch_size", 2)
	v.SetDefault("pipeline.large_batch_threshold", 10)
	v.SetDefault("pipeline.row_concurrency", 1)
	v.SetDefault("pipeline.stream_idle_minutes", 10)
	v.SetDefault("pipeline.keywords_file", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings the given command mode relies on. Modes:
// serve, run, sheets, save, contacts. All problems are reported together.
func (c *Config) Validate(mode string) error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	var needSheets, needLookups, needFolder bool
	switch mode {
	case "serve":
		needSheets, needLookups, needFolder = true, true, true
		if c.Server.Port <= 0 {
			add("server.port must be > 0")
		}
	case "run":
		needSheets, needLookups = true, true
	case "sheets":
		needSheets, needFolder = true, true
	case "save":
		needSheets = true
	case "contacts":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if !slices.Contains(storeDrivers, c.Store.Driver) {
		add("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.DatabaseURL == "" {
		add("store.database_url is required")
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		add("unknown log format %q", c.Log.Format)
	}

	if needSheets {
		switch c.Sheets.Provider {
		case "google":
			if c.Sheets.AccessToken == "" {
				add("sheets.access_token is required")
			}
			if needFolder && c.Sheets.FolderID == "" {
				add("sheets.folder_id is required")
			}
		case "workbook":
			if c.Sheets.WorkbookDir == "" {
				add("sheets.workbook_dir is required")
			}
		default:
			add("unknown sheets provider %q", c.Sheets.Provider)
		}
	}

	if needLookups {
		switch c.Search.Provider {
		case "apify":
			if c.Apify.Token == "" {
				add("apify.token is required")
			}
		case "jina":
			if c.Jina.Key == "" {
				add("jina.key is required")
			}
		default:
			add("unknown search provider %q", c.Search.Provider)
		}
		if c.Proxycurl.Key == "" {
			add("proxycurl.key is required")
		}
		if c.Pipeline.SmallBatchSize <= 0 {
			add("pipeline.small_batch_size must be > 0")
		}
		if c.Pipeline.LargeBatchThreshold <= 0 {
			add("pipeline.large_batch_threshold must be > 0")
		}
		if c.Pipeline.RowConcurrency < 1 || c.Pipeline.RowConcurrency > 50 {
			add("pipeline.row_concurrency must be between 1 and 50")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
