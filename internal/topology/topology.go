// Package topology derives a semantic component map of an indexed
// project. Chunks are clustered by embedding similarity into
// components, and components are linked by the average similarity of
// their cross-cluster chunk pairs. The graph is recomputed on demand
// and never persisted.
package topology

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"time"

	"github.com/spetr/mcp-coderag/pkg/provider"
	"github.com/spetr/mcp-coderag/pkg/types"
)

const (
	DefaultClusterThreshold = 0.7
	DefaultEdgeThreshold    = 0.5
	DefaultMaxEdges         = 20

	maxRepresentatives = 5
)

// Builder builds topology graphs from stored embeddings.
type Builder struct {
	store            provider.VectorStore
	clusterThreshold float64
	edgeThreshold    float64
	maxEdges         int
}

// Config contains builder configuration. Zero thresholds fall back to
// the defaults.
type Config struct {
	Store            provider.VectorStore
	ClusterThreshold float64
	EdgeThreshold    float64
	MaxEdges         int
}

// New creates a topology builder.
func New(cfg Config) *Builder {
	b := &Builder{
		store:            cfg.Store,
		clusterThreshold: cfg.ClusterThreshold,
		edgeThreshold:    cfg.EdgeThreshold,
		maxEdges:         cfg.MaxEdges,
	}
	if b.clusterThreshold == 0 {
		b.clusterThreshold = DefaultClusterThreshold
	}
	if b.edgeThreshold == 0 {
		b.edgeThreshold = DefaultEdgeThreshold
	}
	if b.maxEdges == 0 {
		b.maxEdges = DefaultMaxEdges
	}
	return b
}

// Build clusters a project's chunks into components. Zero or one chunk
// yields a trivial graph rather than an error.
func (b *Builder) Build(projectPath string) (*types.TopologyGraph, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}
	collection := types.CollectionID(absPath)

	if _, err := b.store.GetManifest(collection); err != nil {
		return nil, err
	}

	chunks, err := b.store.AllEmbeddings(collection)
	if err != nil {
		return nil, fmt.Errorf("loading embeddings: %w", err)
	}

	graph := &types.TopologyGraph{
		ProjectPath: absPath,
		GeneratedAt: time.Now().UTC(),
	}
	if len(chunks) == 0 {
		return graph, nil
	}

	// Single-linkage over the thresholded similarity graph.
	n := len(chunks)
	norms := make([]float64, n)
	for i, c := range chunks {
		norms[i] = vectorNorm(c.Embedding)
	}

	uf := newUnionFind(n)
	sims := make([][]float64, n)
	for i := 0; i < n; i++ {
		sims[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := cosine(chunks[i].Embedding, chunks[j].Embedding, norms[i], norms[j])
			sims[i][j] = sim
			sims[j][i] = sim
			if sim >= b.clusterThreshold {
				uf.union(i, j)
			}
		}
	}

	// Group chunk indices by cluster root, largest cluster first with a
	// deterministic tie-break on the smallest member index.
	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}
	clusters := make([][]int, 0, len(groups))
	for _, members := range groups {
		clusters = append(clusters, members)
	}
	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return clusters[i][0] < clusters[j][0]
	})

	for id, members := range clusters {
		graph.Components = append(graph.Components, b.buildComponent(id, members, chunks, norms))
	}

	graph.Edges = b.buildEdges(clusters, sims)
	return graph, nil
}

// buildComponent assembles one component: its label from the most
// frequent directory among member chunks, and representative symbols
// from the chunks nearest the cluster centroid.
func (b *Builder) buildComponent(id int, members []int, chunks []*types.ChunkWithEmbedding, norms []float64) types.Component {
	comp := types.Component{
		ID:         id,
		ChunkCount: len(members),
	}

	fileSet := make(map[string]bool)
	dirCounts := make(map[string]int)
	for _, i := range members {
		path := chunks[i].Chunk.FilePath
		fileSet[path] = true
		dirCounts[filepath.Dir(path)]++
	}
	for f := range fileSet {
		comp.Files = append(comp.Files, f)
	}
	sort.Strings(comp.Files)
	comp.Label = componentLabel(dirCounts, comp.Files, members, chunks)

	// Representatives: named chunks closest to the centroid.
	centroid := averageEmbedding(members, chunks)
	centroidNorm := vectorNorm(centroid)

	type ranked struct {
		name string
		sim  float64
	}
	var candidates []ranked
	seen := make(map[string]bool)
	for _, i := range members {
		name := chunks[i].Chunk.Name
		if name == "" || name == "(imports)" || seen[name] {
			continue
		}
		seen[name] = true
		candidates = append(candidates, ranked{
			name: name,
			sim:  cosine(chunks[i].Embedding, centroid, norms[i], centroidNorm),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].name < candidates[j].name
	})
	for i := 0; i < len(candidates) && i < maxRepresentatives; i++ {
		comp.Representative = append(comp.Representative, candidates[i].name)
	}

	return comp
}

// componentLabel picks the most frequent directory; a component living
// entirely at the project root falls back to its file or most frequent
// symbol name.
func componentLabel(dirCounts map[string]int, files []string, members []int, chunks []*types.ChunkWithEmbedding) string {
	bestDir, bestCount := "", 0
	for dir, count := range dirCounts {
		if count > bestCount || (count == bestCount && dir < bestDir) {
			bestDir, bestCount = dir, count
		}
	}
	if bestDir != "" && bestDir != "." {
		return bestDir
	}

	if len(files) == 1 {
		base := filepath.Base(files[0])
		if ext := filepath.Ext(base); ext != "" {
			base = base[:len(base)-len(ext)]
		}
		return base
	}

	symCounts := make(map[string]int)
	for _, i := range members {
		name := chunks[i].Chunk.Name
		if name != "" && name != "(imports)" {
			symCounts[name]++
		}
	}
	bestSym, bestSymCount := "", 0
	for name, count := range symCounts {
		if count > bestSymCount || (count == bestSymCount && name < bestSym) {
			bestSym, bestSymCount = name, count
		}
	}
	if bestSym != "" {
		return bestSym
	}
	if len(files) > 0 {
		return filepath.Base(files[0])
	}
	return "unknown"
}

// buildEdges links component pairs by the average similarity over all
// cross-cluster chunk pairs, keeping only edges above the threshold and
// the strongest maxEdges overall.
func (b *Builder) buildEdges(clusters [][]int, sims [][]float64) []types.ComponentEdge {
	var edges []types.ComponentEdge
	for a := 0; a < len(clusters); a++ {
		for c := a + 1; c < len(clusters); c++ {
			var sum float64
			for _, i := range clusters[a] {
				for _, j := range clusters[c] {
					sum += sims[i][j]
				}
			}
			avg := sum / float64(len(clusters[a])*len(clusters[c]))
			if avg >= b.edgeThreshold {
				edges = append(edges, types.ComponentEdge{
					From:       a,
					To:         c,
					Similarity: float32(avg),
				})
			}
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Similarity != edges[j].Similarity {
			return edges[i].Similarity > edges[j].Similarity
		}
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	if len(edges) > b.maxEdges {
		edges = edges[:b.maxEdges]
	}
	return edges
}

// unionFind with path halving.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(x, y int) {
	px, py := u.find(x), u.find(y)
	if px != py {
		u.parent[px] = py
	}
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}

func averageEmbedding(members []int, chunks []*types.ChunkWithEmbedding) []float32 {
	if len(members) == 0 {
		return nil
	}
	dim := len(chunks[members[0]].Embedding)
	avg := make([]float32, dim)
	for _, i := range members {
		for d, x := range chunks[i].Embedding {
			avg[d] += x
		}
	}
	for d := range avg {
		avg[d] /= float32(len(members))
	}
	return avg
}
