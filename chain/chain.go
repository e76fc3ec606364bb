package chain

import (
	"sort"

	"panbundle/fingerprint"
)

// Anchor is one shared fingerprint between two sequences: the same canonical
// hash at APos in sequence A and BPos in sequence B. Reverse anchors pair a
// forward-strand fingerprint with a reverse-strand one (or vice versa); both
// positions stay in forward coordinates.
type Anchor struct {
	APos    int
	BPos    int
	Reverse bool
}

// diagonal is the co-linearity key: BPos-APos for forward anchors,
// BPos+APos for reverse ones (a reverse match walks B backwards as A
// advances, so the sum stays constant).
func (a Anchor) diagonal() int {
	if a.Reverse {
		return a.BPos + a.APos
	}
	return a.BPos - a.APos
}

// Chain is a maximal co-linear run of anchors between two sequences.
type Chain struct {
	SeqA    int
	SeqB    int
	Reverse bool
	Anchors []Anchor
}

// ASpan returns the chain's covered range in sequence A, end exclusive, with
// k bases added past the final anchor start.
func (c *Chain) ASpan(k int) (int, int) {
	return c.Anchors[0].APos, c.Anchors[len(c.Anchors)-1].APos + k
}

// BSpan returns the chain's covered range in sequence B in forward
// coordinates, end exclusive.
func (c *Chain) BSpan(k int) (int, int) {
	first, last := c.Anchors[0].BPos, c.Anchors[len(c.Anchors)-1].BPos
	if c.Reverse {
		//B positions decrease along the chain
		return last, first + k
	}
	return first, last + k
}

// Options bound chain growth and acceptance.
type Options struct {
	GapTolerance int //allowed drift off the running diagonal
	MaxGap       int //largest anchor-to-anchor step in A
	MinAnchors   int //chains below this are discarded
}

// Find gathers all shared fingerprints between sequences aID and bID and
// groups them into co-linear chains. Comparing a sequence to itself skips the
// trivial same-position matches. No shared fingerprints is an empty result.
// Returned chains never overlap in their A ranges: competing candidates are
// resolved by anchor count, then span.
func Find(ix *fingerprint.Index, aID, bID int, opt Options) []Chain {
	anchors := collectAnchors(ix, aID, bID)
	if len(anchors) == 0 {
		return nil
	}
	sort.Slice(anchors, func(i, j int) bool {
		if anchors[i].APos != anchors[j].APos {
			return anchors[i].APos < anchors[j].APos
		}
		return anchors[i].BPos < anchors[j].BPos
	})
	candidates := group(anchors, opt)
	kept := resolveOverlaps(candidates, ix.K())
	for i := range kept {
		kept[i].SeqA = aID
		kept[i].SeqB = bID
	}
	return kept
}

func collectAnchors(ix *fingerprint.Index, aID, bID int) []Anchor {
	var anchors []Anchor
	for _, fp := range ix.Sequence(aID) {
		for _, hit := range ix.Query(fp.Hash) {
			if hit.SeqID != bID {
				continue
			}
			rev := hit.Strand != fp.Strand
			if aID == bID && hit.Pos == fp.Pos && !rev {
				continue //the trivial self-match
			}
			anchors = append(anchors, Anchor{APos: fp.Pos, BPos: hit.Pos, Reverse: rev})
		}
	}
	return anchors
}

// openChain is a chain under construction together with its running diagonal.
type openChain struct {
	anchors  []Anchor
	reverse  bool
	diagSum  int //sum of member diagonals, for the running mean
	lastAPos int
}

func (oc *openChain) meanDiag() int {
	return oc.diagSum / len(oc.anchors)
}

// group walks anchors in A order, extending whichever open chain the anchor
// fits (same strand sense, diagonal within tolerance of the chain's running
// mean, A step below the gap limit) or opening a new one. The closest
// diagonal wins when several chains could take the anchor.
func group(anchors []Anchor, opt Options) []Chain {
	var open []*openChain
	var closed []Chain
	for _, a := range anchors {
		diag := a.diagonal()
		best := -1
		bestDelta := opt.GapTolerance + 1
		for i, oc := range open {
			if oc.reverse != a.Reverse {
				continue
			}
			if a.APos-oc.lastAPos > opt.MaxGap {
				continue
			}
			delta := diag - oc.meanDiag()
			if delta < 0 {
				delta = -delta
			}
			if delta <= opt.GapTolerance && delta < bestDelta {
				best = i
				bestDelta = delta
			}
		}
		if best >= 0 {
			oc := open[best]
			oc.anchors = append(oc.anchors, a)
			oc.diagSum += diag
			oc.lastAPos = a.APos
		} else {
			open = append(open, &openChain{anchors: []Anchor{a}, reverse: a.Reverse, diagSum: diag, lastAPos: a.APos})
		}
		//retire chains that can no longer be extended
		for i := 0; i < len(open); {
			if a.APos-open[i].lastAPos > opt.MaxGap {
				closed = appendClosed(closed, open[i], opt)
				open[i] = open[len(open)-1]
				open = open[:len(open)-1]
			} else {
				i++
			}
		}
	}
	for _, oc := range open {
		closed = appendClosed(closed, oc, opt)
	}
	return closed
}

func appendClosed(closed []Chain, oc *openChain, opt Options) []Chain {
	if len(oc.anchors) < opt.MinAnchors {
		return closed
	}
	return append(closed, Chain{Reverse: oc.reverse, Anchors: oc.anchors})
}

// resolveOverlaps keeps a non-overlapping (in A) subset of chains, greedily
// preferring more anchors, then larger A span, then leftmost start.
func resolveOverlaps(chains []Chain, k int) []Chain {
	if len(chains) <= 1 {
		return chains
	}
	order := make([]int, len(chains))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		ci, cj := &chains[order[x]], &chains[order[y]]
		if len(ci.Anchors) != len(cj.Anchors) {
			return len(ci.Anchors) > len(cj.Anchors)
		}
		si, ei := ci.ASpan(k)
		sj, ej := cj.ASpan(k)
		if ei-si != ej-sj {
			return ei-si > ej-sj
		}
		return si < sj
	})
	var kept []Chain
	for _, idx := range order {
		c := &chains[idx]
		start, end := c.ASpan(k)
		clear := true
		for i := range kept {
			ks, ke := kept[i].ASpan(k)
			if start < ke && ks < end {
				clear = false
				break
			}
		}
		if clear {
			kept = append(kept, *c)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		si, _ := kept[i].ASpan(k)
		sj, _ := kept[j].ASpan(k)
		return si < sj
	})
	return kept
}
