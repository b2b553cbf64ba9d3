// internal/analysis/graph/builder.go

// Package graph derives the directed transition multigraph between intents
// and analyzes its structure: cycles, entry-point reachability, dead ends
// and connectivity.
package graph

import (
	"regexp"
	"sort"
	"strings"

	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

var (
	textRedirectRe   = regexp.MustCompile(`REDIRECT_TO_INTENT\s+(\S+)`)
	markdownButtonRe = regexp.MustCompile(`\[([^\]]+)\]\(type:action\s+action:([^\)]+)\)`)
)

type Builder struct {
	logger logger.Logger
}

func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		logger: log.WithFields(map[string]interface{}{"pass": "graph"}),
	}
}

// Build derives the multigraph. Every reference to another intent becomes
// one directed edge tagged with the kind of field it came from. Edges to
// unknown identifiers are kept in the edge list (the validator reports
// them); traversal helpers skip them.
func (b *Builder) Build(intents []models.Intent) *models.Graph {
	g := &models.Graph{
		Nodes: make(map[string]models.NodeInfo, len(intents)),
	}

	for i := range intents {
		intent := &intents[i]
		g.Nodes[intent.IntentID] = models.NodeInfo{
			RecordType: intent.RecordType,
			Title:      intent.Title,
			HasInputs:  len(intent.Inputs) > 0,
			HasAnswers: len(intent.Answers) > 0,
		}

		if isEntryRecord(intent) {
			g.EntryPoints = append(g.EntryPoints, intent.IntentID)
		}

		g.Edges = append(g.Edges, extractEdges(intent)...)
	}

	outgoing := make(map[string]bool)
	for _, e := range g.Edges {
		outgoing[e.Source] = true
	}
	for id := range g.Nodes {
		if !outgoing[id] {
			g.DeadEnds = append(g.DeadEnds, id)
		}
	}
	sort.Strings(g.DeadEnds)
	sort.Strings(g.EntryPoints)

	b.logger.Info("graph built", map[string]interface{}{
		"nodes":        len(g.Nodes),
		"edges":        len(g.Edges),
		"entry_points": len(g.EntryPoints),
		"dead_ends":    len(g.DeadEnds),
	})

	return g
}

// extractEdges collects every outgoing reference of one intent, in a fixed
// field order so repeated runs produce identical edge lists.
func extractEdges(intent *models.Intent) []models.Edge {
	var edges []models.Edge
	src := intent.IntentID

	if intent.RedirectTo != "" {
		edges = append(edges, models.Edge{Source: src, Target: intent.RedirectTo, Kind: models.EdgeDirectRedirect})
	}
	if intent.FallbackIntent != "" {
		edges = append(edges, models.Edge{Source: src, Target: intent.FallbackIntent, Kind: models.EdgeFallback})
	}

	for _, answer := range intent.Answers {
		for _, m := range textRedirectRe.FindAllStringSubmatch(answer.Answer, -1) {
			edges = append(edges, models.Edge{
				Source:    src,
				Target:    m[1],
				Kind:      models.EdgeTextRedirect,
				Condition: slotCondition(answer.SlotChecks),
			})
		}

		for _, m := range markdownButtonRe.FindAllStringSubmatch(answer.Answer, -1) {
			edges = append(edges, models.Edge{Source: src, Target: m[2], Kind: models.EdgeActionRedirect})
		}

		for _, action := range answer.Actions {
			if action.ActionID != "" {
				edges = append(edges, models.Edge{Source: src, Target: action.ActionID, Kind: models.EdgeActionRedirect})
			}
		}

		for _, button := range answer.Buttons {
			if button.Action.Type == "REDIRECT_TO_INTENT" && button.Action.IntentID != "" {
				edges = append(edges, models.Edge{Source: src, Target: button.Action.IntentID, Kind: models.EdgeButtonRedirect})
			}
		}

		if answer.RedirectTo != "" {
			edges = append(edges, models.Edge{Source: src, Target: answer.RedirectTo, Kind: models.EdgeAnswerRedirect})
		}
	}

	for _, filler := range intent.SlotFillers {
		for _, cond := range filler.Conditions {
			if cond.ThenRedirect != "" {
				edges = append(edges, models.Edge{
					Source: src, Target: cond.ThenRedirect,
					Kind: models.EdgeSlotThen, Condition: cond.Expression,
				})
			}
			if cond.ElseRedirect != "" {
				edges = append(edges, models.Edge{
					Source: src, Target: cond.ElseRedirect,
					Kind: models.EdgeSlotElse, Condition: cond.Expression,
				})
			}
		}
	}

	return edges
}

func slotCondition(checks []models.SlotCheck) string {
	if len(checks) == 0 {
		return ""
	}
	parts := make([]string, 0, len(checks))
	for _, c := range checks {
		if c.SlotID == "" || len(c.Values) == 0 {
			continue
		}
		parts = append(parts, c.SlotID+"="+c.Values[0])
	}
	return strings.Join(parts, " & ")
}

func isEntryRecord(intent *models.Intent) bool {
	if len(intent.Inputs) == 0 {
		return false
	}
	rt := strings.ToLower(intent.RecordType)
	return strings.Contains(rt, "main") ||
		rt == "cc_match" ||
		rt == "cc_viber_telegram"
}
