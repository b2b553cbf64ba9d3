// internal/analysis/graph/cycles.go
package graph

import (
	"sort"

	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

// Detector enumerates simple cycles in the transition graph. Every cycle
// is canonicalized (rotated so its lexicographically smallest node comes
// first) before insertion, so the same loop discovered from different
// starting nodes collapses to one report entry.
type Detector struct {
	maxDepth int
	logger   logger.Logger
}

func NewDetector(maxDepth int, log logger.Logger) *Detector {
	return &Detector{
		maxDepth: maxDepth,
		logger:   log.WithFields(map[string]interface{}{"pass": "cycles"}),
	}
}

// Find enumerates simple cycles. Deterministic: nodes are iterated in
// sorted order, and for each start node only nodes ordered >= start are
// explored, which yields each cycle exactly once, rooted at its own
// minimal node, already in canonical rotation. Dangling edges are not
// traversed. Search depth is bounded; hitting the bound sets Truncated
// instead of hanging on pathological graphs.
func (d *Detector) Find(g *models.Graph) *models.CycleReport {
	report := &models.CycleReport{}

	adj := g.Adjacency()

	nodes := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)

	seen := make(map[string]bool)

	for _, start := range nodes {
		onPath := map[string]bool{start: true}
		path := []string{start}
		d.search(start, start, path, onPath, adj, seen, report)
	}

	d.logger.Info("cycle search finished", map[string]interface{}{
		"cycles":     len(report.Cycles),
		"self_loops": len(report.SelfLoops),
		"truncated":  report.Truncated,
	})

	return report
}

func (d *Detector) search(start, current string, path []string, onPath map[string]bool,
	adj map[string][]string, seen map[string]bool, report *models.CycleReport) {

	if len(path) > d.maxDepth {
		report.Truncated = true
		return
	}

	for _, next := range adj[current] {
		if next == start {
			d.record(path, seen, report)
			continue
		}
		// Restricting to nodes after start roots every cycle at its
		// minimal member exactly once.
		if next < start || onPath[next] {
			continue
		}
		onPath[next] = true
		d.search(start, next, append(path, next), onPath, adj, seen, report)
		delete(onPath, next)
	}
}

func (d *Detector) record(path []string, seen map[string]bool, report *models.CycleReport) {
	cycle := models.Cycle{Nodes: canonicalize(path)}
	key := cycle.Key()
	if seen[key] {
		return
	}
	seen[key] = true

	if cycle.Len() == 1 {
		report.SelfLoops = append(report.SelfLoops, cycle)
		return
	}
	report.Cycles = append(report.Cycles, cycle)
}

// canonicalize rotates the node sequence so the lexicographically smallest
// identifier comes first. Direction is preserved: the graph is directed,
// so the reversed walk is a different cycle.
func canonicalize(nodes []string) []string {
	if len(nodes) == 0 {
		return nil
	}
	min := 0
	for i := 1; i < len(nodes); i++ {
		if nodes[i] < nodes[min] {
			min = i
		}
	}
	out := make([]string, 0, len(nodes))
	out = append(out, nodes[min:]...)
	out = append(out, nodes[:min]...)
	return out
}
