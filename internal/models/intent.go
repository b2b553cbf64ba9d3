// internal/models/intent.go
package models

// Intent is the normalized in-memory representation of one dialog node:
// trigger inputs, routing, slots, answers and version metadata.
//
// Fields that the source exports with pandas-style NaN markers are typed
// as interface{} so the validator can tell an explicit NaN apart from a
// legitimately absent value.
type Intent struct {
	IntentID   string   `json:"intent_id"`
	Title      string   `json:"title"`
	RecordType string   `json:"record_type,omitempty"`
	SymbolCode string   `json:"symbol_code,omitempty"`
	Topics     []string `json:"topics,omitempty"`

	Inputs  []Input  `json:"inputs,omitempty"`
	Answers []Answer `json:"answers,omitempty"`

	Slots       []Slot       `json:"slots,omitempty"`
	SlotIDs     interface{}  `json:"slot_ids,omitempty"`
	SlotFillers []SlotFiller `json:"slot_fillers,omitempty"`

	RoutingParams  interface{} `json:"routing_params,omitempty"`
	IntentSettings interface{} `json:"intent_settings,omitempty"`

	RedirectTo     string `json:"redirect_to,omitempty"`
	FallbackIntent string `json:"fallback_intent,omitempty"`

	// Version is a .NET-style tick counter; zero means no version metadata.
	Version  int64       `json:"version,omitempty"`
	ExpireAt interface{} `json:"expire_at,omitempty"`
}

// Input groups the trigger questions that activate an intent.
type Input struct {
	Questions []Question `json:"questions,omitempty"`
}

// Question carries one trigger pattern (regex or literal match string).
type Question struct {
	Sentence string `json:"sentence"`
}

// Answer is one response option of an intent.
type Answer struct {
	Answer     string      `json:"answer,omitempty"`
	Remarks    string      `json:"remarks,omitempty"`
	ArticleIDs []string    `json:"article_ids,omitempty"`
	Attachment string      `json:"attachment,omitempty"`
	RedirectTo string      `json:"redirect_to,omitempty"`
	Actions    []Action    `json:"actions,omitempty"`
	Buttons    []Button    `json:"buttons,omitempty"`
	SlotChecks []SlotCheck `json:"slots,omitempty"`
}

// Action is a structured answer action reference.
type Action struct {
	ActionID   string `json:"action_id"`
	ActionText string `json:"action_text,omitempty"`
}

// Button is a structured answer button with an optional redirect action.
type Button struct {
	Text   string       `json:"text,omitempty"`
	Action ButtonAction `json:"action,omitempty"`
}

// ButtonAction describes what pressing a button does.
type ButtonAction struct {
	Type     string `json:"type,omitempty"`
	IntentID string `json:"intent_id,omitempty"`
}

// SlotCheck is a slot-value condition attached to an answer.
type SlotCheck struct {
	SlotID string   `json:"slot_id"`
	Values []string `json:"values,omitempty"`
}

// Slot is a piece of information the dialog collects within an intent.
type Slot struct {
	SlotID        string `json:"slot_id"`
	FillPrompt    string `json:"fill_prompt,omitempty"`
	Clarification bool   `json:"clarification,omitempty"`
}

// SlotFiller carries conditional routing driven by collected slot values.
type SlotFiller struct {
	SlotID     string          `json:"slot_id,omitempty"`
	Conditions []SlotCondition `json:"conditions,omitempty"`
}

// SlotCondition branches the dialog on a slot value.
type SlotCondition struct {
	Expression   string `json:"expression,omitempty"`
	ThenRedirect string `json:"then_redirect,omitempty"`
	ElseRedirect string `json:"else_redirect,omitempty"`
}

// SettingsMap returns IntentSettings as a map when it is one, nil otherwise.
func (i *Intent) SettingsMap() map[string]interface{} {
	if m, ok := i.IntentSettings.(map[string]interface{}); ok {
		return m
	}
	return nil
}

// RoutingMap returns RoutingParams as a map when it is one, nil otherwise.
func (i *Intent) RoutingMap() map[string]interface{} {
	if m, ok := i.RoutingParams.(map[string]interface{}); ok {
		return m
	}
	return nil
}

// TriggerPatterns flattens all trigger sentences across inputs.
func (i *Intent) TriggerPatterns() []string {
	var patterns []string
	for _, in := range i.Inputs {
		for _, q := range in.Questions {
			if q.Sentence != "" {
				patterns = append(patterns, q.Sentence)
			}
		}
	}
	return patterns
}
