// internal/analysis/graph/graph_test.go
package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

func createNode(id string) models.Intent {
	return models.Intent{IntentID: id, Title: "Intent " + id}
}

func createGraph(t *testing.T, intents []models.Intent) *models.Graph {
	return NewBuilder(logger.NewTestLogger(t)).Build(intents)
}

func edgesByKind(g *models.Graph, kind models.EdgeKind) []models.Edge {
	var out []models.Edge
	for _, e := range g.Edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestBuildExtractsAllEdgeKinds(t *testing.T) {
	intent := models.Intent{
		IntentID:       "hub",
		RedirectTo:     "direct-target",
		FallbackIntent: "fallback-target",
		Answers: []models.Answer{
			{
				Answer: "Смотрите тут. REDIRECT_TO_INTENT text-target\n" +
					"[Открыть](type:action action:markdown-target)",
				SlotChecks: []models.SlotCheck{{SlotID: "region", Values: []string{"msk"}}},
				Actions:    []models.Action{{ActionID: "action-target"}},
				Buttons: []models.Button{
					{Text: "Да", Action: models.ButtonAction{Type: "REDIRECT_TO_INTENT", IntentID: "button-target"}},
					{Text: "Нет", Action: models.ButtonAction{Type: "POSTBACK", IntentID: "ignored"}},
				},
				RedirectTo: "answer-target",
			},
		},
		SlotFillers: []models.SlotFiller{
			{Conditions: []models.SlotCondition{{
				Expression:   "age > 18",
				ThenRedirect: "then-target",
				ElseRedirect: "else-target",
			}}},
		},
	}

	g := createGraph(t, []models.Intent{intent})

	targets := map[models.EdgeKind]string{
		models.EdgeDirectRedirect: "direct-target",
		models.EdgeFallback:       "fallback-target",
		models.EdgeTextRedirect:   "text-target",
		models.EdgeActionRedirect: "markdown-target",
		models.EdgeButtonRedirect: "button-target",
		models.EdgeAnswerRedirect: "answer-target",
		models.EdgeSlotThen:       "then-target",
		models.EdgeSlotElse:       "else-target",
	}
	for kind, target := range targets {
		matches := edgesByKind(g, kind)
		require.NotEmpty(t, matches, "missing %s edge", kind)
		found := false
		for _, e := range matches {
			if e.Target == target {
				found = true
			}
		}
		assert.True(t, found, "%s edge should point at %s", kind, target)
	}

	// markdown button and actions array both yield action_redirect
	assert.Len(t, edgesByKind(g, models.EdgeActionRedirect), 2)

	text := edgesByKind(g, models.EdgeTextRedirect)
	require.Len(t, text, 1)
	assert.Equal(t, "region=msk", text[0].Condition)

	slotThen := edgesByKind(g, models.EdgeSlotThen)
	require.Len(t, slotThen, 1)
	assert.Equal(t, "age > 18", slotThen[0].Condition)
}

func TestBuildEntryPointsAndDeadEnds(t *testing.T) {
	entry := createNode("entry")
	entry.RecordType = "cc_regexp_main"
	entry.Inputs = []models.Input{{Questions: []models.Question{{Sentence: "привет"}}}}
	entry.RedirectTo = "middle"

	noInputs := createNode("typed-but-silent")
	noInputs.RecordType = "cc_match"

	middle := createNode("middle")
	middle.RedirectTo = "leaf"

	leaf := createNode("leaf")

	g := createGraph(t, []models.Intent{entry, noInputs, middle, leaf})

	assert.Equal(t, []string{"entry"}, g.EntryPoints, "entry detection requires inputs")
	assert.Equal(t, []string{"leaf", "typed-but-silent"}, g.DeadEnds)
	assert.True(t, g.Nodes["entry"].HasInputs)
	assert.False(t, g.Nodes["leaf"].HasAnswers)
}

func TestBuildKeepsDanglingEdges(t *testing.T) {
	a := createNode("a")
	a.RedirectTo = "ghost"

	g := createGraph(t, []models.Intent{a})

	require.Len(t, g.Edges, 1)
	assert.Equal(t, "ghost", g.Edges[0].Target)
	assert.False(t, g.HasNode("ghost"))
	assert.Empty(t, g.Adjacency()["a"], "traversal skips dangling targets")
}

func TestFindCanonicalCycle(t *testing.T) {
	// the same ring declared starting from "c"
	c := createNode("c")
	c.RedirectTo = "a"
	a := createNode("a")
	a.RedirectTo = "b"
	b := createNode("b")
	b.RedirectTo = "c"

	g := createGraph(t, []models.Intent{c, a, b})
	report := NewDetector(50, logger.NewTestLogger(t)).Find(g)

	require.Len(t, report.Cycles, 1)
	assert.Equal(t, []string{"a", "b", "c"}, report.Cycles[0].Nodes)
	assert.Empty(t, report.SelfLoops)
	assert.False(t, report.Truncated)
}

func TestFindPreservesDirection(t *testing.T) {
	// two opposite rings over the same nodes are distinct cycles
	a := createNode("a")
	a.RedirectTo = "b"
	a.FallbackIntent = "c"
	b := createNode("b")
	b.RedirectTo = "c"
	b.FallbackIntent = "a"
	c := createNode("c")
	c.RedirectTo = "a"
	c.FallbackIntent = "b"

	g := createGraph(t, []models.Intent{a, b, c})
	report := NewDetector(50, logger.NewTestLogger(t)).Find(g)

	keys := map[string]bool{}
	for _, cycle := range report.Cycles {
		keys[cycle.Key()] = true
	}
	assert.True(t, keys[models.Cycle{Nodes: []string{"a", "b", "c"}}.Key()])
	assert.True(t, keys[models.Cycle{Nodes: []string{"a", "c", "b"}}.Key()])
}

func TestFindSelfLoopSeparated(t *testing.T) {
	a := createNode("a")
	a.RedirectTo = "a"
	b := createNode("b")
	b.RedirectTo = "a"

	g := createGraph(t, []models.Intent{a, b})
	report := NewDetector(50, logger.NewTestLogger(t)).Find(g)

	require.Len(t, report.SelfLoops, 1)
	assert.Equal(t, []string{"a"}, report.SelfLoops[0].Nodes)
	assert.Empty(t, report.Cycles)
}

func TestFindParallelEdgesYieldOneCycle(t *testing.T) {
	a := createNode("a")
	a.RedirectTo = "b"
	a.FallbackIntent = "b"
	b := createNode("b")
	b.RedirectTo = "a"

	g := createGraph(t, []models.Intent{a, b})
	report := NewDetector(50, logger.NewTestLogger(t)).Find(g)

	assert.Len(t, report.Cycles, 1, "parallel edges collapse in traversal")
}

func TestFindDepthBoundSetsTruncated(t *testing.T) {
	// ring of 5, bound of 3
	ids := []string{"a", "b", "c", "d", "e"}
	intents := make([]models.Intent, len(ids))
	for i, id := range ids {
		n := createNode(id)
		n.RedirectTo = ids[(i+1)%len(ids)]
		intents[i] = n
	}

	g := createGraph(t, intents)
	report := NewDetector(3, logger.NewTestLogger(t)).Find(g)

	assert.True(t, report.Truncated)
	assert.Empty(t, report.Cycles)
}

func TestAnalyzeStructureDepthAndComponents(t *testing.T) {
	entry := createNode("entry")
	entry.RecordType = "cc_regexp_main"
	entry.Inputs = []models.Input{{Questions: []models.Question{{Sentence: "p"}}}}
	entry.RedirectTo = "mid"

	mid := createNode("mid")
	mid.RedirectTo = "leaf"
	leaf := createNode("leaf")

	islandA := createNode("island-a")
	islandA.RedirectTo = "island-b"
	islandB := createNode("island-b")

	g := createGraph(t, []models.Intent{entry, mid, leaf, islandA, islandB})
	report := AnalyzeStructure(g)

	assert.Equal(t, 2, report.Depth.MaxDepth)
	assert.Equal(t, 2, report.Depth.DepthsByEntry["entry"])
	require.Len(t, report.Components, 2)
	require.Len(t, report.IsolatedSubgraphs, 1)
	assert.Equal(t, []string{"island-a", "island-b"}, report.IsolatedSubgraphs[0])
	assert.False(t, report.IsConnected)
}

func TestAnalyzeStructureConnected(t *testing.T) {
	entry := createNode("entry")
	entry.RecordType = "cc_regexp_main"
	entry.Inputs = []models.Input{{Questions: []models.Question{{Sentence: "p"}}}}
	entry.RedirectTo = "leaf"
	leaf := createNode("leaf")

	g := createGraph(t, []models.Intent{entry, leaf})
	report := AnalyzeStructure(g)

	assert.True(t, report.IsConnected)
	assert.Empty(t, report.IsolatedSubgraphs)
}
