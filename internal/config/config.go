package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "CUSTSEG"

// DateLayout is the layout accepted for analysis_date.
const DateLayout = "2006-01-02"

// Config represents the complete application configuration
type Config struct {
	ProjectName string          `yaml:"project_name" envconfig:"PROJECT_NAME" validate:"required"`
	Version     string          `yaml:"version" envconfig:"VERSION" validate:"required"`
	Paths       PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Analysis    AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Charts      ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Output      OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Logging     LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry   TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Storage     StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir          string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	RawDataDir       string `yaml:"raw_data_dir" envconfig:"RAW_DATA_DIR" validate:"required"`
	ProcessedDataDir string `yaml:"processed_data_dir" envconfig:"PROCESSED_DATA_DIR" validate:"required"`
	ResultsDir       string `yaml:"results_dir" envconfig:"RESULTS_DIR" validate:"required"`
	PlotsDir         string `yaml:"plots_dir" envconfig:"PLOTS_DIR" validate:"required"`
	LogsDir          string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// AnalysisConfig controls cleaning and RFM scoring.
type AnalysisConfig struct {
	RFMBins          int     `yaml:"rfm_bins" envconfig:"RFM_BINS" validate:"min=2,max=10"`
	AnalysisDate     string  `yaml:"analysis_date" envconfig:"ANALYSIS_DATE" validate:"omitempty,datetime=2006-01-02"`
	RemoveOutliers   bool    `yaml:"remove_outliers" envconfig:"REMOVE_OUTLIERS"`
	OutlierQuantile  float64 `yaml:"outlier_quantile" envconfig:"OUTLIER_QUANTILE" validate:"gt=0,lte=1"`
	MissingCustomers string  `yaml:"missing_customers" envconfig:"MISSING_CUSTOMERS" validate:"oneof=remove fill"`
	LifespanDays     float64 `yaml:"lifespan_days" envconfig:"LIFESPAN_DAYS" validate:"gt=0"`
}

// ChartsConfig controls chart rendering.
type ChartsConfig struct {
	DPI         int      `yaml:"dpi" envconfig:"DPI" validate:"min=50,max=1200"`
	FontDirs    []string `yaml:"font_dirs" envconfig:"FONT_DIRS"`
	Interactive bool     `yaml:"interactive" envconfig:"INTERACTIVE"`
}

// OutputConfig controls exported artifacts.
type OutputConfig struct {
	Formats   []string `yaml:"formats" envconfig:"FORMATS" validate:"min=1,dive,oneof=csv excel json"`
	BOMPrefix bool     `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
	Encoding  string   `yaml:"encoding" envconfig:"ENCODING" validate:"oneof=utf-8 latin-1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output     string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath   string `yaml:"file_path" envconfig:"FILE_PATH"`
	MaxSizeMB  int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" validate:"min=1"`
	MaxAgeDays int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" envconfig:"MAX_BACKUPS" validate:"min=0"`
}

// TelemetryConfig controls run tracing and metrics snapshots.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceFile   string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// StorageConfig configures the optional SQL sink. An empty DSN disables it.
type StorageConfig struct {
	DSN         string `yaml:"dsn" envconfig:"DSN" validate:"omitempty,startswith=mysql://|startswith=mariadb://|startswith=sqlite://"`
	TablePrefix string `yaml:"table_prefix" envconfig:"TABLE_PREFIX"`
}

// Load loads configuration from the first config file found, then applies
// environment overrides.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile loads defaults, overlays the YAML file at path (if non-empty) and
// applies CUSTSEG_* environment variables last.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg; keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalizes logging settings.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required for output %q", c.Logging.Output)
	}

	if c.Telemetry.Enabled && c.Telemetry.TraceFile == "" && c.Telemetry.MetricsFile == "" {
		return fmt.Errorf("telemetry enabled without trace_file or metrics_file")
	}

	return nil
}

// ParsedAnalysisDate returns the configured analysis date. ok is false when
// none is configured and the default (latest purchase + 1 day) applies.
func (c *Config) ParsedAnalysisDate() (date time.Time, ok bool, err error) {
	if c.Analysis.AnalysisDate == "" {
		return time.Time{}, false, nil
	}
	date, err = time.Parse(DateLayout, c.Analysis.AnalysisDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid analysis_date %q: %w", c.Analysis.AnalysisDate, err)
	}
	return date, true, nil
}

// HasFormat reports whether format is one of the configured output formats.
func (c *Config) HasFormat(format string) bool {
	for _, f := range c.Output.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		ProjectName: "Customer Segmentation",
		Version:     "1.0.0",
		Paths: PathsConfig{
			DataDir:          "data",
			RawDataDir:       "data/raw",
			ProcessedDataDir: "data/processed",
			ResultsDir:       "data/results",
			PlotsDir:         "plots",
			LogsDir:          "logs",
		},
		Analysis: AnalysisConfig{
			RFMBins:          5,
			OutlierQuantile:  0.95,
			MissingCustomers: "remove",
			LifespanDays:     365,
		},
		Charts: ChartsConfig{
			DPI:         300,
			FontDirs:    DefaultFontDirs(),
			Interactive: true,
		},
		Output: OutputConfig{
			Formats:  []string{"csv"},
			Encoding: "utf-8",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     "both",
			FilePath:   "logs/customer_segmentation.log",
			MaxSizeMB:  10,
			MaxAgeDays: 7,
			MaxBackups: 5,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "custseg",
			TraceFile:   "logs/traces.json",
			MetricsFile: "logs/custseg.prom",
			SampleRatio: 1.0,
		},
		Storage: StorageConfig{
			TablePrefix: "custseg_",
		},
	}
}

// DefaultFontDirs lists the system font directories searched for chart fonts.
func DefaultFontDirs() []string {
	return []string{
		"/usr/share/fonts",
		"/usr/local/share/fonts",
		"/Library/Fonts",
		"/System/Library/Fonts",
		`C:\Windows\Fonts`,
	}
}
