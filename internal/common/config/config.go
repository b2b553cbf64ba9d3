// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Sinks    SinksConfig    `mapstructure:"sinks"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type InputConfig struct {
	Path       string `mapstructure:"path"`
	MaxRecords int    `mapstructure:"max_records"` // 0 = unlimited
}

type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	ExportJSON bool   `mapstructure:"export_json"`
	ExportCSV  bool   `mapstructure:"export_csv"`
}

// AnalysisConfig controls which passes run and with which thresholds.
type AnalysisConfig struct {
	ReferenceTime    string           `mapstructure:"reference_time"` // RFC3339; required when expiry/freshness runs
	ClassifySubtypes bool             `mapstructure:"classify_subtypes"`
	FilterExpired    bool             `mapstructure:"filter_expired"`
	MaxCycleDepth    int              `mapstructure:"max_cycle_depth"`
	Checks           ChecksConfig     `mapstructure:"checks"`
	Scorers          ScorersConfig    `mapstructure:"scorers"`
	Thresholds       ThresholdsConfig `mapstructure:"thresholds"`
}

// ChecksConfig toggles individual validation checks.
type ChecksConfig struct {
	IntentIDs    bool `mapstructure:"intent_ids"`
	Titles       bool `mapstructure:"titles"`
	NaNFields    bool `mapstructure:"nan_fields"`
	EmptyContent bool `mapstructure:"empty_content"`
	Redirects    bool `mapstructure:"redirects"`
	Settings     bool `mapstructure:"settings"`
}

// ScorersConfig toggles individual quality scorers.
type ScorersConfig struct {
	Complexity bool `mapstructure:"complexity"`
	Diversity  bool `mapstructure:"diversity"`
	Freshness  bool `mapstructure:"freshness"`
}

// ThresholdsConfig carries the overridable scoring tables.
type ThresholdsConfig struct {
	Complexity  ComplexityThresholds `mapstructure:"complexity"`
	Diversity   map[string]int       `mapstructure:"diversity"`    // distinct-kind count -> score
	Freshness   map[string]int       `mapstructure:"freshness"`    // band name -> minimum score
	RiskWeights map[string]int       `mapstructure:"risk_weights"` // severity name -> deduction weight
}

type ComplexityThresholds struct {
	SimpleMaxLength      int `mapstructure:"simple_max_length"`
	ModerateMaxLength    int `mapstructure:"moderate_max_length"`
	ComplexMaxLength     int `mapstructure:"complex_max_length"`
	SimpleMaxAlts        int `mapstructure:"simple_max_alternatives"`
	ModerateMaxAlts      int `mapstructure:"moderate_max_alternatives"`
	ComplexMaxAlts       int `mapstructure:"complex_max_alternatives"`
	TopPatterns          int `mapstructure:"top_patterns"`
	MaxCharacterClasses  int `mapstructure:"max_character_classes"`
	MaxGroupNestingDepth int `mapstructure:"max_group_nesting_depth"`
}

type SinksConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

type ElasticsearchConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	Index      string   `mapstructure:"index"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
