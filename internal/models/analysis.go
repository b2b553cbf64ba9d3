// internal/models/analysis.go
package models

import (
	"sort"
	"strings"
	"time"
)

// --- Classification ---

// Category is the primary intent category. Exactly one is assigned per
// intent by an ordered predicate list; the order is part of the contract.
type Category string

const (
	CategoryLLMFallbackError   Category = "llm_fallback_error"
	CategoryABTest             Category = "ab_test"
	CategoryLoyaltyProgram     Category = "loyalty_program"
	CategoryErrorHandling      Category = "error_handling"
	CategoryComplexCondition   Category = "complex_condition"
	CategoryAction             Category = "action"
	CategoryMainIntent         Category = "main_intent"
	CategoryOperationalSupport Category = "operational_support"
	CategoryDialogState        Category = "dialog_state"
)

// Subtype refines a category; empty means no subtype matched.
type Subtype string

const (
	SubtypeLLMFallback       Subtype = "llm_fallback"
	SubtypeABTest            Subtype = "ab_test"
	SubtypeLoyaltyProgram    Subtype = "loyalty_program"
	SubtypeInsuranceProducts Subtype = "insurance_products"
	SubtypePolicyManagement  Subtype = "policy_management"
	SubtypePersonalCabinet   Subtype = "personal_cabinet"
	SubtypeMobileAppSupport  Subtype = "mobile_app_support"
)

// EntryPointKind is the mechanism by which an intent is activated.
type EntryPointKind string

const (
	EntryPointMain      EntryPointKind = "main_regex"
	EntryPointMatch     EntryPointKind = "match_based"
	EntryPointMessenger EntryPointKind = "messenger_channel"
	EntryPointSystem    EntryPointKind = "system"
	EntryPointFallback  EntryPointKind = "fallback"
	EntryPointCustom    EntryPointKind = "custom"
)

// Classification is the immutable result of classifying one intent.
type Classification struct {
	IntentID string   `json:"intent_id"`
	Category Category `json:"category"`
	Subtype  Subtype  `json:"subtype,omitempty"`
	Expired  bool     `json:"expired"`
	Reasons  []string `json:"reasons,omitempty"`
}

// --- Entities ---

// EntityKind labels an extracted entity mention.
type EntityKind string

const (
	EntityProduct  EntityKind = "product"
	EntityAction   EntityKind = "action"
	EntityStatus   EntityKind = "status"
	EntityChannel  EntityKind = "channel"
	EntityDocument EntityKind = "document"
	EntityLocation EntityKind = "location"
)

// Entity is one surface mention found in a textual field of an intent.
// Duplicates are expected and feed aggregate counts.
type Entity struct {
	Kind     EntityKind `json:"kind"`
	Text     string     `json:"text"`
	Field    string     `json:"field"`
	IntentID string     `json:"intent_id"`
}

// --- Graph ---

// EdgeKind tags the semantics of the field an edge was derived from.
type EdgeKind string

const (
	EdgeDirectRedirect EdgeKind = "direct_redirect"
	EdgeTextRedirect   EdgeKind = "text_redirect"
	EdgeButtonRedirect EdgeKind = "button_redirect"
	EdgeActionRedirect EdgeKind = "action_redirect"
	EdgeAnswerRedirect EdgeKind = "answer_redirect"
	EdgeSlotThen       EdgeKind = "slot_then"
	EdgeSlotElse       EdgeKind = "slot_else"
	EdgeFallback       EdgeKind = "fallback"
)

// Edge is a directed transition between two intents. The graph is a
// multigraph: parallel edges of different kinds are distinct.
type Edge struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Kind      EdgeKind `json:"kind"`
	Condition string   `json:"condition,omitempty"`
}

// NodeInfo carries per-node display data for reporting.
type NodeInfo struct {
	RecordType string `json:"record_type,omitempty"`
	Title      string `json:"title,omitempty"`
	HasInputs  bool   `json:"has_inputs"`
	HasAnswers bool   `json:"has_answers"`
}

// Graph is the directed transition multigraph over intent identifiers.
// Edges may point at identifiers outside Nodes (dangling redirects);
// consumers must tolerate that.
type Graph struct {
	Nodes       map[string]NodeInfo `json:"nodes"`
	Edges       []Edge              `json:"edges"`
	EntryPoints []string            `json:"entry_points"`
	DeadEnds    []string            `json:"dead_ends"`
}

// HasNode reports whether id is a known intent identifier.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Nodes[id]
	return ok
}

// Adjacency returns outgoing neighbor lists restricted to known nodes,
// deduplicated across parallel edges and sorted for deterministic walks.
func (g *Graph) Adjacency() map[string][]string {
	seen := make(map[string]map[string]bool)
	for _, e := range g.Edges {
		if !g.HasNode(e.Target) {
			continue
		}
		if seen[e.Source] == nil {
			seen[e.Source] = make(map[string]bool)
		}
		seen[e.Source][e.Target] = true
	}
	adj := make(map[string][]string, len(seen))
	for src, targets := range seen {
		list := make([]string, 0, len(targets))
		for t := range targets {
			list = append(list, t)
		}
		sort.Strings(list)
		adj[src] = list
	}
	return adj
}

// --- Cycles ---

// Cycle is a closed walk stored in canonical form: rotated so the
// lexicographically smallest identifier comes first. The closing node is
// not repeated.
type Cycle struct {
	Nodes []string `json:"nodes"`
}

// Key returns the canonical dedup key of the cycle.
func (c Cycle) Key() string {
	return strings.Join(c.Nodes, "\x1f")
}

// Len returns the cycle length; 1 means a self-loop.
func (c Cycle) Len() int {
	return len(c.Nodes)
}

// CycleReport aggregates cycle detection output.
type CycleReport struct {
	Cycles    []Cycle `json:"cycles"`
	SelfLoops []Cycle `json:"self_loops"`
	Truncated bool    `json:"truncated"`
}

// --- Validation ---

// Severity ranks a validation issue or risk.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityRank orders severities from info (0) to critical (4).
var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// MoreSevere reports whether a outranks b.
func MoreSevere(a, b Severity) bool {
	return severityRank[a] > severityRank[b]
}

// IssueSeverity is the two-level severity of a ValidationIssue.
type IssueSeverity string

const (
	IssueError   IssueSeverity = "error"
	IssueWarning IssueSeverity = "warning"
)

// ValidationIssue describes one structural defect found in the record set.
type ValidationIssue struct {
	Rule      string        `json:"rule"`
	Severity  IssueSeverity `json:"severity"`
	IntentIDs []string      `json:"intent_ids,omitempty"`
	Message   string        `json:"message"`
}

// ValidationReport aggregates all issues of a run. Valid iff no
// error-severity issue exists; warnings never flip validity.
type ValidationReport struct {
	Issues       []ValidationIssue `json:"issues"`
	ErrorCount   int               `json:"error_count"`
	WarningCount int               `json:"warning_count"`
	ChecksRun    []string          `json:"checks_run"`
	IsValid      bool              `json:"is_valid"`
}

// Add appends an issue and updates the counters.
func (r *ValidationReport) Add(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
	switch issue.Severity {
	case IssueError:
		r.ErrorCount++
	case IssueWarning:
		r.WarningCount++
	}
	r.IsValid = r.ErrorCount == 0
}

// --- Quality scores ---

// QualityScore is the common summary shape of one quality metric.
type QualityScore struct {
	Metric   string `json:"metric"`
	Score    int    `json:"score"`
	Category string `json:"category"`
}

// ComplexityBucket labels one trigger pattern's complexity.
type ComplexityBucket string

const (
	ComplexitySimple      ComplexityBucket = "simple"
	ComplexityModerate    ComplexityBucket = "moderate"
	ComplexityComplex     ComplexityBucket = "complex"
	ComplexityVeryComplex ComplexityBucket = "very_complex"
)

// PatternAnalysis describes one analyzed trigger pattern.
type PatternAnalysis struct {
	IntentID     string           `json:"intent_id"`
	Pattern      string           `json:"pattern"`
	Length       int              `json:"length"`
	Alternatives int              `json:"alternatives"`
	Bucket       ComplexityBucket `json:"bucket"`
	Issues       []string         `json:"issues,omitempty"`
	Score        int              `json:"score"`
}

// ComplexityReport is the pattern-complexity scorer output.
type ComplexityReport struct {
	QualityScore
	TotalPatterns     int                      `json:"total_patterns"`
	Distribution      map[ComplexityBucket]int `json:"distribution"`
	ComplexCount      int                      `json:"complex_count"`
	ComplexPercentage float64                  `json:"complex_percentage"`
	TopPatterns       []PatternAnalysis        `json:"top_patterns,omitempty"`
}

// EntryPoint describes one detected entry point.
type EntryPoint struct {
	IntentID   string         `json:"intent_id"`
	Kind       EntryPointKind `json:"kind"`
	RecordType string         `json:"record_type,omitempty"`
	Title      string         `json:"title,omitempty"`
}

// DiversityReport is the entry-point diversity scorer output.
type DiversityReport struct {
	QualityScore
	TotalEntryPoints    int                    `json:"total_entry_points"`
	Distribution        map[EntryPointKind]int `json:"distribution"`
	DistinctKinds       int                    `json:"distinct_kinds"`
	EntryPoints         []EntryPoint           `json:"entry_points,omitempty"`
	HasMultipleChannels bool                   `json:"has_multiple_channels"`
}

// FreshnessReport is the data-freshness scorer output.
type FreshnessReport struct {
	QualityScore
	HasVersionData      bool           `json:"has_version_data"`
	OldestUpdate        time.Time      `json:"oldest_update,omitzero"`
	NewestUpdate        time.Time      `json:"newest_update,omitzero"`
	DateRangeDays       int            `json:"date_range_days"`
	TotalWithVersion    int            `json:"total_with_version"`
	UpdatedLastDay      int            `json:"updated_last_day"`
	UpdatedLastWeek     int            `json:"updated_last_week"`
	UpdatedLastMonth    int            `json:"updated_last_month"`
	LastMonthPercentage float64        `json:"last_month_percentage"`
	UpdatesByDay        map[string]int `json:"updates_by_day,omitempty"`
	PeakDay             string         `json:"peak_day,omitempty"`
	PeakDayCount        int            `json:"peak_day_count,omitempty"`
	SkippedInvalid      int            `json:"skipped_invalid"`
}

// --- Risk ---

// RiskKind labels one category of per-intent risk.
type RiskKind string

const (
	RiskDuplicateID      RiskKind = "duplicate_id"
	RiskDuplicateTitle   RiskKind = "duplicate_title"
	RiskNaNValue         RiskKind = "nan_value"
	RiskMissingType      RiskKind = "missing_record_type"
	RiskEmptyAnswers     RiskKind = "empty_answers"
	RiskEmptyInputs      RiskKind = "empty_inputs"
	RiskBrokenRedirect   RiskKind = "broken_redirect"
	RiskCircularRedirect RiskKind = "circular_redirect"
	RiskDeadEnd          RiskKind = "dead_end"
	RiskIsolatedSubgraph RiskKind = "isolated_subgraph"
	RiskComplexPattern   RiskKind = "complex_pattern"
)

// IntentRisk collects the risks of one intent, keeping the highest severity.
type IntentRisk struct {
	IntentID string     `json:"intent_id"`
	Severity Severity   `json:"severity"`
	Risks    []RiskItem `json:"risks"`
}

// RiskItem is one risk finding.
type RiskItem struct {
	Kind        RiskKind `json:"kind"`
	Description string   `json:"description"`
}

// RiskReport is the per-run risk aggregation.
type RiskReport struct {
	RiskScore            int                   `json:"risk_score"`
	SeverityDistribution map[Severity]int      `json:"severity_distribution"`
	KindDistribution     map[RiskKind]int      `json:"kind_distribution"`
	CriticalIntents      []string              `json:"critical_intents,omitempty"`
	HighRiskIntents      []string              `json:"high_risk_intents,omitempty"`
	Intents              map[string]IntentRisk `json:"intents,omitempty"`
}

// --- Graph structure metrics ---

// DepthInfo summarizes BFS depth from the entry points.
type DepthInfo struct {
	MaxDepth      int            `json:"max_depth"`
	MinDepth      int            `json:"min_depth"`
	AvgDepth      float64        `json:"avg_depth"`
	DepthsByEntry map[string]int `json:"depths_by_entry,omitempty"`
}

// StructureReport is the graph connectivity summary.
type StructureReport struct {
	Depth             DepthInfo  `json:"depth"`
	Components        [][]string `json:"components,omitempty"`
	IsolatedSubgraphs [][]string `json:"isolated_subgraphs,omitempty"`
	IsConnected       bool       `json:"is_connected"`
}

// --- Run result ---

// Statistics is the aggregate distribution summary of one run.
type Statistics struct {
	TotalIntents        int                `json:"total_intents"`
	TotalTransitions    int                `json:"total_transitions"`
	IntentsWithSlots    int                `json:"intents_with_slots"`
	ExpiredFiltered     int                `json:"expired_filtered"`
	TypeDistribution    map[Category]int   `json:"type_distribution"`
	SubtypeDistribution map[Subtype]int    `json:"subtype_distribution"`
	EntityDistribution  map[EntityKind]int `json:"entity_distribution"`
}

// Result is the combined output of one analysis run. All contained data
// is derived, read-only and owned by this object.
type Result struct {
	RunID         string    `json:"run_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	ReferenceTime time.Time `json:"reference_time"`

	Classifications []Classification  `json:"classifications"`
	Entities        []Entity          `json:"entities"`
	Graph           *Graph            `json:"graph"`
	Cycles          *CycleReport      `json:"cycles"`
	Structure       *StructureReport  `json:"structure,omitempty"`
	Validation      *ValidationReport `json:"validation"`

	Complexity *ComplexityReport `json:"complexity,omitempty"`
	Diversity  *DiversityReport  `json:"diversity,omitempty"`
	Freshness  *FreshnessReport  `json:"freshness,omitempty"`
	Risk       *RiskReport       `json:"risk,omitempty"`

	Statistics *Statistics `json:"statistics"`
}
