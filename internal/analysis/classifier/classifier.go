// internal/analysis/classifier/classifier.go

// Package classifier assigns every intent exactly one primary category and,
// where the category supports it, a subtype. Categories are resolved by an
// ordered predicate list: the first match wins, and that order is a fixed
// contract, not an accident. Reordering changes results for intents whose
// fields satisfy several predicates at once.
package classifier

import (
	"strings"
	"time"

	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

type Config struct {
	// ReferenceTime is the clock expiry flags are judged against. The
	// caller supplies it explicitly; the classifier never reads the
	// system clock.
	ReferenceTime time.Time
	// ClassifySubtypes enables the second predicate pass.
	ClassifySubtypes bool
}

type Classifier struct {
	config     Config
	categories []categoryRule
	subtypes   []subtypeRule
	logger     logger.Logger
}

type categoryRule struct {
	category models.Category
	reason   string
	match    func(*models.Intent) bool
}

type subtypeRule struct {
	subtype  models.Subtype
	keywords []string
}

// Categories that participate in subtype resolution. The rest either fully
// determine the intent's meaning on their own (error handling, actions,
// slot conditions) or contradict every subtype.
var subtypedCategories = map[models.Category]bool{
	models.CategoryMainIntent:         true,
	models.CategoryDialogState:        true,
	models.CategoryLoyaltyProgram:     true,
	models.CategoryABTest:             true,
	models.CategoryLLMFallbackError:   true,
	models.CategoryOperationalSupport: true,
}

func New(cfg Config, log logger.Logger) *Classifier {
	return &Classifier{
		config:     cfg,
		categories: categoryRules(),
		subtypes:   subtypeRules(),
		logger:     log.WithFields(map[string]interface{}{"pass": "classifier"}),
	}
}

// Classify resolves the category, subtype and expiry flag of one intent.
// Pure: depends only on the intent and the configured reference time.
func (c *Classifier) Classify(intent *models.Intent) models.Classification {
	classification := models.Classification{
		IntentID: intent.IntentID,
		Category: models.CategoryDialogState,
		Expired:  intent.ExpiredAt(c.config.ReferenceTime),
	}

	for _, rule := range c.categories {
		if rule.match(intent) {
			classification.Category = rule.category
			classification.Reasons = append(classification.Reasons, rule.reason)
			break
		}
	}

	if c.config.ClassifySubtypes && subtypedCategories[classification.Category] {
		classification.Subtype = c.resolveSubtype(intent)
	}

	return classification
}

// ClassifyAll classifies every intent in order.
func (c *Classifier) ClassifyAll(intents []models.Intent) []models.Classification {
	out := make([]models.Classification, 0, len(intents))
	for i := range intents {
		out = append(out, c.Classify(&intents[i]))
	}
	c.logger.Info("intents classified", map[string]interface{}{"count": len(out)})
	return out
}

func (c *Classifier) resolveSubtype(intent *models.Intent) models.Subtype {
	combined := combinedText(intent)
	for _, rule := range c.subtypes {
		for _, kw := range rule.keywords {
			if strings.Contains(combined, kw) {
				return rule.subtype
			}
		}
	}
	return ""
}

// categoryRules is the ordered category predicate list. LLM fallback comes
// before generic error handling because its records also carry error
// markers; A/B test and loyalty settings flags outrank naming heuristics.
func categoryRules() []categoryRule {
	return []categoryRule{
		{
			category: models.CategoryLLMFallbackError,
			reason:   "llm fallback markers",
			match: func(i *models.Intent) bool {
				if settingsFlag(i, "llm_fallback") {
					return true
				}
				combined := lowerJoin(i.RecordType, i.Title, i.IntentID)
				return strings.Contains(combined, "llm") &&
					(strings.Contains(combined, "fallback") || strings.Contains(combined, "error"))
			},
		},
		{
			category: models.CategoryABTest,
			reason:   "a/b experiment markers",
			match: func(i *models.Intent) bool {
				if settingsFlag(i, "ab_test") || settingsFlag(i, "experiment") {
					return true
				}
				combined := lowerJoin(i.RecordType, i.Title, i.IntentID)
				return strings.Contains(combined, "ab_test") ||
					strings.Contains(combined, "abtest") ||
					strings.Contains(combined, "experiment")
			},
		},
		{
			category: models.CategoryLoyaltyProgram,
			reason:   "loyalty markers",
			match: func(i *models.Intent) bool {
				if settingsFlag(i, "loyalty") {
					return true
				}
				combined := combinedText(i)
				return strings.Contains(combined, "loyalty") ||
					strings.Contains(combined, "лояльност") ||
					strings.Contains(combined, "бонус")
			},
		},
		{
			category: models.CategoryErrorHandling,
			reason:   "fallback or error naming",
			match: func(i *models.Intent) bool {
				combined := lowerJoin(i.RecordType, i.Title)
				return strings.Contains(combined, "fallback") ||
					strings.Contains(combined, "error") ||
					strings.Contains(combined, "catch_all")
			},
		},
		{
			category: models.CategoryComplexCondition,
			reason:   "slot-condition routing",
			match: func(i *models.Intent) bool {
				for _, filler := range i.SlotFillers {
					for _, cond := range filler.Conditions {
						if cond.ThenRedirect != "" || cond.ElseRedirect != "" {
							return true
						}
					}
				}
				return false
			},
		},
		{
			category: models.CategoryAction,
			reason:   "action-only answers",
			match: func(i *models.Intent) bool {
				if len(i.Answers) == 0 {
					return false
				}
				for _, a := range i.Answers {
					if len(a.Actions) == 0 && len(a.Buttons) == 0 {
						return false
					}
					if strings.TrimSpace(a.Answer) != "" {
						return false
					}
				}
				return true
			},
		},
		{
			category: models.CategoryMainIntent,
			reason:   "main regex entry",
			match: func(i *models.Intent) bool {
				rt := strings.ToLower(i.RecordType)
				return strings.Contains(rt, "regexp_main") || strings.Contains(rt, "main")
			},
		},
		{
			category: models.CategoryOperationalSupport,
			reason:   "operator routing",
			match: func(i *models.Intent) bool {
				if routing := i.RoutingMap(); routing != nil {
					for _, key := range []string{"callcenters", "usergroups", "skills", "operator_group"} {
						if hasContent(routing[key]) {
							return true
						}
					}
				}
				combined := lowerJoin(i.Title, i.IntentID)
				return strings.Contains(combined, "operator") || strings.Contains(combined, "оператор")
			},
		},
		// dialog_state is the default and never listed: an intent that
		// matches nothing above is reachable only mid-dialog.
	}
}

// subtypeRules is the ordered subtype keyword list. Product names come
// before policy management so that product intents with manage verbs keep
// the more specific subtype.
func subtypeRules() []subtypeRule {
	return []subtypeRule{
		{models.SubtypeLLMFallback, []string{"llm", "gpt"}},
		{models.SubtypeABTest, []string{"ab_test", "abtest", "experiment", "variant"}},
		{models.SubtypeLoyaltyProgram, []string{"loyalty", "лояльност", "бонус", "скидк"}},
		{models.SubtypeInsuranceProducts, []string{"осаго", "каско", "дмс", "insurance", "страхован"}},
		{models.SubtypePolicyManagement, []string{"полис", "policy", "продл", "расторж", "renew"}},
		{models.SubtypePersonalCabinet, []string{"личный кабинет", "кабинет", "profile", "профиль", "account"}},
		{models.SubtypeMobileAppSupport, []string{"приложени", "мобильн", "mobile", "app"}},
	}
}

func combinedText(i *models.Intent) string {
	parts := []string{i.Title, i.IntentID, i.RecordType, i.SymbolCode}
	parts = append(parts, i.Topics...)
	return strings.ToLower(strings.Join(parts, " "))
}

func lowerJoin(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}

// settingsFlag reports whether the intent settings carry a truthy flag.
func settingsFlag(i *models.Intent, key string) bool {
	settings := i.SettingsMap()
	if settings == nil {
		return false
	}
	switch v := settings[key].(type) {
	case bool:
		return v
	case string:
		return v != "" && !strings.EqualFold(v, "false")
	case float64:
		return v != 0
	default:
		return false
	}
}

// hasContent reports whether a routing value is present and non-empty.
// Explicit NaN markers do not count as content; the validator reports them.
func hasContent(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		trimmed := strings.TrimSpace(val)
		return trimmed != "" && !strings.EqualFold(trimmed, "nan")
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	case float64:
		return val == val // NaN != NaN
	default:
		return true
	}
}
