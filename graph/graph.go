package graph

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"panbundle/align"
	"panbundle/sequence"
)

// Span is one contributing region of a bundle: a half-open interval of a
// source sequence, with the identity of the overlap that asserted it.
type Span struct {
	Seq      int
	Start    int
	End      int
	Identity float64
}

func (s Span) length() int {
	return s.End - s.Start
}

// Bundle is a canonical shared segment: one equivalence class of
// near-identical spans across the stored sequences. Content holds the bytes
// of the representative span.
type Bundle struct {
	ID      int
	Content []byte
	Spans   []Span //provenance, canonically ordered
}

// Len is the bundle's representative length.
func (b *Bundle) Len() int {
	return len(b.Content)
}

// Segment is one step of a path: either a reference to a bundle (by id) or a
// private stretch (Bundle < 0). Start/End address the source sequence, so a
// path always reconstructs its sequence exactly whatever the bundle
// representative looks like.
type Segment struct {
	Bundle int
	Start  int
	End    int
}

// Private reports whether this segment is unshared sequence.
func (s Segment) Private() bool {
	return s.Bundle < 0
}

// Path is the ordered traversal of bundles and private segments that
// reconstructs one source sequence.
type Path struct {
	Seq      int
	Segments []Segment
}

// Graph owns the bundles and paths built from one overlap set.
type Graph struct {
	store   *sequence.Store
	bundles []*Bundle
	paths   []*Path
	dropped int
}

// SpanPriority orders conflicting spans; the winner keeps its place in a
// path. The default prefers higher identity, then longer span. It must be a
// strict total order for the graph to be deterministic, so ties always fall
// through to coordinates.
type SpanPriority func(a, b Span) bool

func DefaultSpanPriority(a, b Span) bool {
	if a.Identity != b.Identity {
		return a.Identity > b.Identity
	}
	if a.length() != b.length() {
		return a.length() > b.length()
	}
	if a.Seq != b.Seq {
		return a.Seq < b.Seq
	}
	return a.Start < b.Start
}

// Options control graph fusion.
type Options struct {
	//MergeFraction is the minimum reciprocal overlap (fraction of the
	//shorter span) for two same-sequence spans to join one bundle.
	MergeFraction float64
	//Priority resolves conflicting spans; nil uses DefaultSpanPriority.
	Priority SpanPriority
}

func DefaultOptions() Options {
	return Options{MergeFraction: 0.5}
}

// Build fuses overlaps into bundles and paths. Each overlap asserts its two
// spans equal; equal spans are merged transitively with an arena union-find,
// along with same-sequence spans that substantially overlap. All merge input
// is canonically sorted first, so the result is independent of the order
// overlaps were discovered. Inconsistent evidence is resolved by the span
// priority and counted, never fatal.
func Build(store *sequence.Store, overlaps []align.Overlap, opt Options) *Graph {
	if opt.Priority == nil {
		opt.Priority = DefaultSpanPriority
	}
	g := &Graph{store: store}

	//two spans per overlap, in canonical overlap order
	overlaps = sortedOverlaps(overlaps)
	spans := make([]Span, 0, len(overlaps)*2)
	for _, ov := range overlaps {
		spans = append(spans,
			Span{Seq: ov.SeqA, Start: ov.AStart, End: ov.AEnd, Identity: ov.Identity},
			Span{Seq: ov.SeqB, Start: ov.BStart, End: ov.BEnd, Identity: ov.Identity})
	}
	uf := newUnionFind(len(spans))
	for i := 0; i < len(spans); i += 2 {
		uf.union(i, i+1)
	}

	//merge overlapping spans within each sequence, sweeping in sorted order
	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		a, b := spans[order[x]], spans[order[y]]
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return order[x] < order[y]
	})
	var active []int
	for _, idx := range order {
		s := spans[idx]
		keep := active[:0]
		for _, aIdx := range active {
			as := spans[aIdx]
			if as.Seq == s.Seq && as.End > s.Start {
				keep = append(keep, aIdx)
				shorter := s.length()
				if as.length() < shorter {
					shorter = as.length()
				}
				shared := as.End - s.Start
				if s.End < as.End {
					shared = s.length()
				}
				if float64(shared) >= opt.MergeFraction*float64(shorter) {
					uf.union(idx, aIdx)
				}
			}
		}
		active = append(keep, idx)
	}

	//classes in order of first appearance along the canonical sort
	classOf := make(map[int]int)
	members := make([][]int, 0, len(spans)/2)
	for _, idx := range order {
		root := uf.find(idx)
		c, ok := classOf[root]
		if !ok {
			c = len(members)
			classOf[root] = c
			members = append(members, nil)
		}
		members[c] = append(members[c], idx)
	}

	g.bundles = make([]*Bundle, len(members))
	for c, idxs := range members {
		b := &Bundle{ID: c, Spans: make([]Span, len(idxs))}
		for i, idx := range idxs {
			b.Spans[i] = spans[idx]
		}
		rep := b.Spans[0]
		for _, s := range b.Spans[1:] {
			if s.length() > rep.length() ||
				(s.length() == rep.length() && s.Identity > rep.Identity) {
				rep = s
			}
		}
		seq, err := store.Get(rep.Seq)
		if err == nil {
			content := make([]byte, rep.length())
			copy(content, seq.Slice(rep.Start, rep.End))
			b.Content = content
		}
		g.bundles[c] = b
	}

	g.buildPaths(spans, order, classOf, uf, opt.Priority)
	if g.dropped > 0 {
		log.WithFields(log.Fields{"dropped": g.dropped, "bundles": len(g.bundles)}).
			Warn("conflicting spans dropped during graph fusion")
	}
	return g
}

// buildPaths partitions each sequence into bundle references and private
// segments. Conflicting spans (overlapping on the sequence but in different
// bundles) are resolved by priority; losers are counted as dropped.
func (g *Graph) buildPaths(spans []Span, order []int, classOf map[int]int, uf *unionFind, priority SpanPriority) {
	bySeq := make([][]placed, g.store.Len())
	seen := make(map[[4]int]bool) //dedupe identical placements per class
	for _, idx := range order {
		s := spans[idx]
		c := classOf[uf.find(idx)]
		key := [4]int{c, s.Seq, s.Start, s.End}
		if seen[key] {
			continue
		}
		seen[key] = true
		bySeq[s.Seq] = append(bySeq[s.Seq], placed{span: s, class: c})
	}
	g.paths = make([]*Path, g.store.Len())
	for _, id := range g.store.IDs() {
		seq, err := g.store.Get(id)
		if err != nil {
			continue
		}
		candidates := coalescePlacements(bySeq[id])
		sort.Slice(candidates, func(i, j int) bool {
			return priority(candidates[i].span, candidates[j].span)
		})
		var kept []placed
		for _, cand := range candidates {
			clear := true
			for _, kc := range kept {
				if cand.span.Start < kc.span.End && kc.span.Start < cand.span.End {
					clear = false
					break
				}
			}
			if clear {
				kept = append(kept, cand)
			} else {
				g.dropped++
			}
		}
		sort.Slice(kept, func(i, j int) bool {
			return kept[i].span.Start < kept[j].span.Start
		})
		path := &Path{Seq: id}
		pos := 0
		for _, kc := range kept {
			if kc.span.Start > pos {
				path.Segments = append(path.Segments, Segment{Bundle: -1, Start: pos, End: kc.span.Start})
			}
			path.Segments = append(path.Segments, Segment{Bundle: kc.class, Start: kc.span.Start, End: kc.span.End})
			pos = kc.span.End
		}
		if pos < seq.Len() {
			path.Segments = append(path.Segments, Segment{Bundle: -1, Start: pos, End: seq.Len()})
		}
		g.paths[id] = path
	}
}

// placed is one bundle placement on a sequence, awaiting path assembly.
type placed struct {
	span  Span
	class int
}

// coalescePlacements fuses overlapping placements of the same class into one
// covering placement. Two spans the union-find already declared equal are not
// conflicting evidence; only cross-class overlaps are left for the priority
// to resolve. Non-overlapping placements of one class stay separate, a bundle
// can legitimately recur along a sequence.
func coalescePlacements(placements []placed) []placed {
	if len(placements) < 2 {
		return placements
	}
	sort.Slice(placements, func(i, j int) bool {
		a, b := placements[i], placements[j]
		if a.class != b.class {
			return a.class < b.class
		}
		if a.span.Start != b.span.Start {
			return a.span.Start < b.span.Start
		}
		return a.span.End < b.span.End
	})
	out := placements[:1]
	for _, p := range placements[1:] {
		last := &out[len(out)-1]
		if p.class == last.class && p.span.Start < last.span.End {
			if p.span.End > last.span.End {
				last.span.End = p.span.End
			}
			if p.span.Identity > last.span.Identity {
				last.span.Identity = p.span.Identity
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

// Nodes returns all bundles, ordered by id.
func (g *Graph) Nodes() []*Bundle {
	return g.bundles
}

// Paths returns one path per stored sequence, in sequence id order.
func (g *Graph) Paths() []*Path {
	return g.paths
}

// Dropped is the count of spans discarded by conflict resolution.
func (g *Graph) Dropped() int {
	return g.dropped
}

// Reconstruct re-expands a path to the exact original bytes of its sequence.
func (g *Graph) Reconstruct(seqID int) ([]byte, error) {
	seq, err := g.store.Get(seqID)
	if err != nil {
		return nil, err
	}
	path := g.paths[seqID]
	out := make([]byte, 0, seq.Len())
	for _, seg := range path.Segments {
		out = append(out, seq.Slice(seg.Start, seg.End)...)
	}
	if len(out) != seq.Len() {
		return nil, fmt.Errorf("path for sequence %d reconstructs %d of %d bases", seqID, len(out), seq.Len())
	}
	return out, nil
}

// sortedOverlaps returns the overlaps in canonical order, leaving the
// caller's slice untouched. The comparator is a strict total order over every
// coordinate so the result never depends on discovery order.
func sortedOverlaps(overlaps []align.Overlap) []align.Overlap {
	sorted := make([]align.Overlap, len(overlaps))
	copy(sorted, overlaps)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.SeqA != b.SeqA {
			return a.SeqA < b.SeqA
		}
		if a.AStart != b.AStart {
			return a.AStart < b.AStart
		}
		if a.AEnd != b.AEnd {
			return a.AEnd < b.AEnd
		}
		if a.SeqB != b.SeqB {
			return a.SeqB < b.SeqB
		}
		if a.BStart != b.BStart {
			return a.BStart < b.BStart
		}
		if a.BEnd != b.BEnd {
			return a.BEnd < b.BEnd
		}
		return a.Identity > b.Identity
	})
	return sorted
}
