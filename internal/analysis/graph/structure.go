// internal/analysis/graph/structure.go
package graph

import (
	"math"
	"sort"

	"dialog-analyzer/internal/models"
)

// AnalyzeStructure computes reachability metrics over a built graph:
// BFS depth from every entry point, weakly connected components, and
// subgraphs with no entry point at all.
func AnalyzeStructure(g *models.Graph) *models.StructureReport {
	report := &models.StructureReport{
		Depth: depthFromEntries(g),
	}

	components := weakComponents(g)
	entrySet := make(map[string]bool, len(g.EntryPoints))
	for _, ep := range g.EntryPoints {
		entrySet[ep] = true
	}

	for _, comp := range components {
		report.Components = append(report.Components, comp)
		if len(comp) < 2 {
			continue
		}
		hasEntry := false
		for _, node := range comp {
			if entrySet[node] {
				hasEntry = true
				break
			}
		}
		if !hasEntry {
			report.IsolatedSubgraphs = append(report.IsolatedSubgraphs, comp)
		}
	}

	report.IsConnected = len(report.IsolatedSubgraphs) == 0
	return report
}

func depthFromEntries(g *models.Graph) models.DepthInfo {
	adj := g.Adjacency()

	info := models.DepthInfo{DepthsByEntry: make(map[string]int)}
	if len(g.EntryPoints) == 0 {
		return info
	}

	min := math.MaxInt
	sum := 0
	for _, entry := range g.EntryPoints {
		depth := bfsDepth(entry, adj)
		info.DepthsByEntry[entry] = depth
		if depth > info.MaxDepth {
			info.MaxDepth = depth
		}
		if depth < min {
			min = depth
		}
		sum += depth
	}
	info.MinDepth = min
	info.AvgDepth = math.Round(float64(sum)/float64(len(g.EntryPoints))*100) / 100
	return info
}

func bfsDepth(entry string, adj map[string][]string) int {
	type item struct {
		node  string
		depth int
	}
	queue := []item{{entry, 0}}
	visited := map[string]bool{entry: true}
	max := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth > max {
			max = cur.depth
		}
		for _, next := range adj[cur.node] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, item{next, cur.depth + 1})
			}
		}
	}
	return max
}

// weakComponents treats edges as undirected and returns sorted components
// in deterministic order.
func weakComponents(g *models.Graph) [][]string {
	und := make(map[string][]string)
	for _, e := range g.Edges {
		if !g.HasNode(e.Target) || !g.HasNode(e.Source) {
			continue
		}
		und[e.Source] = append(und[e.Source], e.Target)
		und[e.Target] = append(und[e.Target], e.Source)
	}

	nodes := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)

	visited := make(map[string]bool)
	var components [][]string

	for _, node := range nodes {
		if visited[node] {
			continue
		}
		var comp []string
		stack := []string{node}
		visited[node] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, cur)
			for _, next := range und[cur] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		sort.Strings(comp)
		components = append(components, comp)
	}

	return components
}
