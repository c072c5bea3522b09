package retriever

import "sort"

// DefaultRRFConstant is the standard RRF smoothing parameter.
// k=60 is empirically validated across domains.
const DefaultRRFConstant = 60

// fusedResult accumulates the RRF contributions for one document.
type fusedResult struct {
	id          string
	rrfScore    float64
	sparseRank  int // 1-indexed, 0 if absent
	denseRank   int // 1-indexed, 0 if absent
	inBothLists bool
}

// rrfFusion combines sparse and dense hit lists using weighted
// Reciprocal Rank Fusion:
//
//	score(d) = w_sparse/(k + rank_sparse) + w_dense/(k + rank_dense)
//
// Documents missing from one list contribute at missing_rank =
// max(len(sparse), len(dense)) + 1 for that source.
type rrfFusion struct {
	k            int
	sparseWeight float64
}

// newRRFFusion creates a fusion instance. A weight outside (0,1) or a
// non-positive k falls back to defaults.
func newRRFFusion(k int, sparseWeight float64) *rrfFusion {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	if sparseWeight <= 0 || sparseWeight >= 1 {
		sparseWeight = DefaultFusionWeight
	}
	return &rrfFusion{k: k, sparseWeight: sparseWeight}
}

// fuse merges the two ranked lists into pair hits ordered by fused score.
// Only hits carrying an identifier participate; ordinal hits cannot be
// joined across sources and are dropped by the caller beforehand.
func (f *rrfFusion) fuse(sparse, dense []Hit) []Hit {
	if len(sparse) == 0 && len(dense) == 0 {
		return []Hit{}
	}

	denseWeight := 1 - f.sparseWeight
	scores := make(map[string]*fusedResult, len(sparse)+len(dense))

	for rank, h := range sparse {
		r := f.getOrCreate(scores, h.ID)
		r.sparseRank = rank + 1
		r.rrfScore += f.sparseWeight / float64(f.k+rank+1)
	}

	for rank, h := range dense {
		r := f.getOrCreate(scores, h.ID)
		r.denseRank = rank + 1
		r.rrfScore += denseWeight / float64(f.k+rank+1)
		if r.sparseRank > 0 {
			r.inBothLists = true
		}
	}

	missingRank := len(sparse)
	if len(dense) > missingRank {
		missingRank = len(dense)
	}
	missingRank++

	for _, r := range scores {
		if r.sparseRank == 0 {
			r.rrfScore += f.sparseWeight / float64(f.k+missingRank)
		}
		if r.denseRank == 0 {
			r.rrfScore += denseWeight / float64(f.k+missingRank)
		}
	}

	fused := make([]*fusedResult, 0, len(scores))
	for _, r := range scores {
		fused = append(fused, r)
	}
	sort.Slice(fused, func(i, j int) bool {
		return f.less(fused[i], fused[j])
	})

	f.normalize(fused)

	hits := make([]Hit, 0, len(fused))
	for _, r := range fused {
		hits = append(hits, Hit{Kind: HitPair, ID: r.id, Score: r.rrfScore})
	}
	return hits
}

// getOrCreate returns the existing accumulator or creates one.
func (f *rrfFusion) getOrCreate(m map[string]*fusedResult, id string) *fusedResult {
	if r, ok := m[id]; ok {
		return r
	}
	r := &fusedResult{id: id}
	m[id] = r
	return r
}

// less implements deterministic ordering: fused score, then presence in
// both lists, then sparse rank, then id.
func (f *rrfFusion) less(a, b *fusedResult) bool {
	if a.rrfScore != b.rrfScore {
		return a.rrfScore > b.rrfScore
	}
	if a.inBothLists != b.inBothLists {
		return a.inBothLists
	}
	if a.sparseRank != b.sparseRank {
		if a.sparseRank == 0 {
			return false
		}
		if b.sparseRank == 0 {
			return true
		}
		return a.sparseRank < b.sparseRank
	}
	return a.id < b.id
}

// normalize scales fused scores so the best result is 1.0.
func (f *rrfFusion) normalize(results []*fusedResult) {
	if len(results) == 0 {
		return
	}
	maxScore := results[0].rrfScore
	if maxScore == 0 {
		return
	}
	for _, r := range results {
		r.rrfScore /= maxScore
	}
}
