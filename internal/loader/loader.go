// internal/loader/loader.go
package loader

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"time"

	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

// Stats summarizes one load: how many lines parsed, were skipped, and how
// many records violated the record schema.
type Stats struct {
	TotalLines       int      `json:"total_lines"`
	Loaded           int      `json:"loaded"`
	Empty            int      `json:"empty"`
	Skipped          int      `json:"skipped"`
	SchemaViolations int      `json:"schema_violations"`
	ViolationSamples []string `json:"violation_samples,omitempty"`
	ExpiredFiltered  int      `json:"expired_filtered"`
}

// Config controls loading behavior.
type Config struct {
	MaxRecords    int  // 0 = unlimited
	FilterExpired bool // drop intents whose expiry has passed
}

// Loader reads intent records from JSON or JSONL files.
type Loader struct {
	config Config
	schema *recordSchema
	logger logger.Logger
}

func New(cfg Config, log logger.Logger) (*Loader, error) {
	schema, err := newRecordSchema()
	if err != nil {
		return nil, err
	}
	return &Loader{
		config: cfg,
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"component": "loader"}),
	}, nil
}

// Load reads intents from path. Tries a whole-file JSON document first
// (array, or object with an "intents" key), then falls back to JSONL
// line-by-line parsing that tolerates comments and trailing garbage.
// When FilterExpired is set, ref is the clock expiry is judged against.
func (l *Loader) Load(path string, ref time.Time) ([]models.Intent, *Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.NewInputNotFoundError(path)
		}
		return nil, nil, apperrors.NewInputUnreadableError(path, err)
	}

	stats := &Stats{}

	raws, ok := l.tryWholeDocument(data)
	if !ok {
		raws = l.parseLines(data, stats)
	}

	intents := l.decodeRecords(raws, stats)
	if len(intents) == 0 {
		return nil, stats, apperrors.NewNoRecordsLoadedError(path)
	}

	if l.config.FilterExpired {
		intents, stats.ExpiredFiltered = filterExpired(intents, ref)
	}

	stats.Loaded = len(intents)
	l.logger.Info("intents loaded", map[string]interface{}{
		"path":              path,
		"loaded":            stats.Loaded,
		"skipped":           stats.Skipped,
		"schema_violations": stats.SchemaViolations,
		"expired_filtered":  stats.ExpiredFiltered,
	})

	return intents, stats, nil
}

// tryWholeDocument attempts to read data as one JSON document.
func (l *Loader) tryWholeDocument(data []byte) ([]json.RawMessage, bool) {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr, true
	}

	var wrapper struct {
		Intents []json.RawMessage `json:"intents"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Intents) > 0 {
		return wrapper.Intents, true
	}

	return nil, false
}

// parseLines reads data as JSONL, skipping blanks and comments and
// salvaging the first object from lines with trailing garbage.
func (l *Loader) parseLines(data []byte, stats *Stats) []json.RawMessage {
	var raws []json.RawMessage

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	for scanner.Scan() {
		stats.TotalLines++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			stats.Empty++
			continue
		}

		if json.Valid([]byte(line)) {
			raws = append(raws, json.RawMessage(line))
			continue
		}

		// Salvage "extra data" lines: decode the first complete object.
		dec := json.NewDecoder(strings.NewReader(line))
		var first json.RawMessage
		if err := dec.Decode(&first); err == nil && len(first) > 0 && first[0] == '{' {
			raws = append(raws, first)
			continue
		}

		stats.Skipped++
	}

	return raws
}

// decodeRecords turns raw JSON objects into intents, applying the record
// schema and the configured record limit.
func (l *Loader) decodeRecords(raws []json.RawMessage, stats *Stats) []models.Intent {
	var intents []models.Intent

	for _, raw := range raws {
		if l.config.MaxRecords > 0 && len(intents) >= l.config.MaxRecords {
			break
		}

		if violations := l.schema.check(raw); len(violations) > 0 {
			stats.SchemaViolations++
			if len(stats.ViolationSamples) < 5 {
				stats.ViolationSamples = append(stats.ViolationSamples, violations[0])
			}
		}

		var intent models.Intent
		if err := json.Unmarshal(raw, &intent); err != nil {
			stats.Skipped++
			l.logger.Debug("record skipped", map[string]interface{}{"error": err.Error()})
			continue
		}
		intents = append(intents, intent)
	}

	return intents
}

// filterExpired drops intents whose expiry has passed relative to ref.
func filterExpired(intents []models.Intent, ref time.Time) ([]models.Intent, int) {
	active := make([]models.Intent, 0, len(intents))
	expired := 0
	for _, intent := range intents {
		if intent.ExpiredAt(ref) {
			expired++
			continue
		}
		active = append(active, intent)
	}
	return active, expired
}
