// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "dialog-analyzer/internal/common/errors"
)

// Known names for the overridable threshold tables. An override naming
// anything else is a misconfigured run, not a data-quality problem.
var (
	knownSeverities = map[string]bool{
		"critical": true, "high": true, "medium": true, "low": true, "info": true,
	}
	knownFreshnessBands = map[string]bool{
		"very_fresh": true, "fresh": true, "moderate": true, "stale": true, "very_stale": true,
	}
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "dialog-analyzer"
	}

	if cfg.Input.Path == "" {
		cfg.Input.Path = "intent_data.jsonl"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "dialog_flow_analysis"
	}

	if cfg.Analysis.MaxCycleDepth == 0 {
		cfg.Analysis.MaxCycleDepth = 50
	}

	// Checks and scorers default to enabled when the whole section is absent.
	if !viper.IsSet("analysis.checks") {
		cfg.Analysis.Checks = ChecksConfig{
			IntentIDs: true, Titles: true, NaNFields: true,
			EmptyContent: true, Redirects: true, Settings: true,
		}
	}
	if !viper.IsSet("analysis.scorers") {
		cfg.Analysis.Scorers = ScorersConfig{Complexity: true, Diversity: true, Freshness: true}
	}
	if !viper.IsSet("analysis.classify_subtypes") {
		cfg.Analysis.ClassifySubtypes = true
	}

	ct := &cfg.Analysis.Thresholds.Complexity
	if ct.SimpleMaxLength == 0 {
		ct.SimpleMaxLength = 30
	}
	if ct.ModerateMaxLength == 0 {
		ct.ModerateMaxLength = 100
	}
	if ct.ComplexMaxLength == 0 {
		ct.ComplexMaxLength = 200
	}
	if ct.SimpleMaxAlts == 0 {
		ct.SimpleMaxAlts = 2
	}
	if ct.ModerateMaxAlts == 0 {
		ct.ModerateMaxAlts = 5
	}
	if ct.ComplexMaxAlts == 0 {
		ct.ComplexMaxAlts = 10
	}
	if ct.TopPatterns == 0 {
		ct.TopPatterns = 10
	}
	if ct.MaxCharacterClasses == 0 {
		ct.MaxCharacterClasses = 5
	}
	if ct.MaxGroupNestingDepth == 0 {
		ct.MaxGroupNestingDepth = 2
	}

	if len(cfg.Analysis.Thresholds.Diversity) == 0 {
		cfg.Analysis.Thresholds.Diversity = map[string]int{
			"1": 25, "2": 50, "3": 75, "4": 100,
		}
	}
	if len(cfg.Analysis.Thresholds.Freshness) == 0 {
		cfg.Analysis.Thresholds.Freshness = map[string]int{
			"very_fresh": 80, "fresh": 60, "moderate": 40, "stale": 20, "very_stale": 0,
		}
	}
	if len(cfg.Analysis.Thresholds.RiskWeights) == 0 {
		cfg.Analysis.Thresholds.RiskWeights = map[string]int{
			"critical": 25, "high": 10, "medium": 5, "low": 2, "info": 0,
		}
	}

	if cfg.Sinks.Postgres.MaxConnections == 0 {
		cfg.Sinks.Postgres.MaxConnections = 25
	}
	if cfg.Sinks.Postgres.MaxIdle == 0 {
		cfg.Sinks.Postgres.MaxIdle = 5
	}
	if cfg.Sinks.Postgres.SSLMode == "" {
		cfg.Sinks.Postgres.SSLMode = "disable"
	}
	if cfg.Sinks.Redis.TTLHours == 0 {
		cfg.Sinks.Redis.TTLHours = 24
	}
	if cfg.Sinks.Elasticsearch.Index == "" {
		cfg.Sinks.Elasticsearch.Index = "dialog-analysis-issues"
	}
	if cfg.Sinks.Elasticsearch.URL == "" && len(cfg.Sinks.Elasticsearch.Addresses) > 0 {
		cfg.Sinks.Elasticsearch.URL = cfg.Sinks.Elasticsearch.Addresses[0]
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Input.Path == "" {
		return apperrors.NewInvalidConfigurationError("input.path is required")
	}

	if cfg.Analysis.MaxCycleDepth < 1 {
		return apperrors.NewInvalidConfigurationError("analysis.max_cycle_depth must be positive")
	}

	ct := cfg.Analysis.Thresholds.Complexity
	if !(ct.SimpleMaxLength < ct.ModerateMaxLength && ct.ModerateMaxLength < ct.ComplexMaxLength) {
		return apperrors.NewInvalidConfigurationError("analysis.thresholds.complexity length bounds must be strictly increasing")
	}
	if !(ct.SimpleMaxAlts < ct.ModerateMaxAlts && ct.ModerateMaxAlts < ct.ComplexMaxAlts) {
		return apperrors.NewInvalidConfigurationError("analysis.thresholds.complexity alternative bounds must be strictly increasing")
	}

	for key := range cfg.Analysis.Thresholds.Diversity {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 {
			return apperrors.NewUnknownThresholdKeyError("diversity", key)
		}
	}
	for key := range cfg.Analysis.Thresholds.Freshness {
		if !knownFreshnessBands[key] {
			return apperrors.NewUnknownThresholdKeyError("freshness", key)
		}
	}
	for key := range cfg.Analysis.Thresholds.RiskWeights {
		if !knownSeverities[key] {
			return apperrors.NewUnknownThresholdKeyError("risk_weights", key)
		}
	}

	if cfg.Sinks.Postgres.Enabled {
		if cfg.Sinks.Postgres.Host == "" {
			return apperrors.NewInvalidConfigurationError("sinks.postgres.host is required when the store is enabled")
		}
		if cfg.Sinks.Postgres.Database == "" {
			return apperrors.NewInvalidConfigurationError("sinks.postgres.database is required when the store is enabled")
		}
		if cfg.Sinks.Postgres.User == "" {
			return apperrors.NewInvalidConfigurationError("sinks.postgres.user is required when the store is enabled")
		}
	}
	if cfg.Sinks.Redis.Enabled && cfg.Sinks.Redis.Address == "" {
		return apperrors.NewInvalidConfigurationError("sinks.redis.address is required when the cache is enabled")
	}
	if cfg.Sinks.Elasticsearch.Enabled && cfg.Sinks.Elasticsearch.GetURL() == "" {
		return apperrors.NewInvalidConfigurationError("sinks.elasticsearch.addresses or url is required when indexing is enabled")
	}

	return nil
}

// DiversityTable converts the string-keyed diversity override into the
// integer table consumed by the scorer.
func DiversityTable(m map[string]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		if n, err := strconv.Atoi(k); err == nil {
			out[n] = v
		}
	}
	return out
}
