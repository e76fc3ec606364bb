package align

import (
	"panbundle/chain"
	"panbundle/sequence"
)

// Overlap is one refined shared region between two sequences. B coordinates
// are always in forward orientation; Reverse marks that the B region matches
// the reverse complement of the A region.
type Overlap struct {
	SeqA     int
	SeqB     int
	AStart   int
	AEnd     int
	BStart   int
	BEnd     int
	Reverse  bool
	Identity float64
}

// ALen is the overlap's span in sequence A.
func (o *Overlap) ALen() int {
	return o.AEnd - o.AStart
}

// BLen is the overlap's span in sequence B.
func (o *Overlap) BLen() int {
	return o.BEnd - o.BStart
}

// Options bound the refinement stage.
type Options struct {
	BandWidth    int     //half-width of the edit-distance band
	MaxErrorRate float64 //extension stops past this rate over a trailing block
	MinLength    int     //overlaps spanning less than this are rejected
	MinIdentity  float64 //overlaps under this identity are rejected
}

// extendBlock is the trailing window for the extension error test: bases are
// taken up in blocks of this size and a block is kept only while its own
// error rate stays under the limit.
const extendBlock = 64

// Refine extends a chain outward to precise overlap boundaries and scores it.
// Extension proceeds block-wise beyond the chain's anchor span, each block
// aligned under a banded edit distance and accepted while the block error
// rate stays under MaxErrorRate. Returns false if the refined overlap fails
// the length or identity thresholds; that is a policy rejection, not an
// error.
func Refine(a, b *sequence.Sequence, c chain.Chain, k int, opt Options) (Overlap, bool) {
	abytes := a.Bytes()
	bbytes := b.Bytes()
	if c.Reverse {
		bbytes = sequence.ReverseComplement(bbytes)
	}
	aStart, aEnd := c.ASpan(k)
	bStart, bEnd := c.BSpan(k)
	if c.Reverse {
		//work in reverse-complement coordinates so the match runs forward
		bStart, bEnd = len(bbytes)-bEnd, len(bbytes)-bStart
	}
	if aEnd > len(abytes) {
		aEnd = len(abytes)
	}
	if bEnd > len(bbytes) {
		bEnd = len(bbytes)
	}

	//extend left
	for aStart > 0 && bStart > 0 {
		step := extendBlock
		if aStart < step {
			step = aStart
		}
		if bStart < step {
			step = bStart
		}
		dist := bandedDistance(reversed(abytes[aStart-step:aStart]), reversed(bbytes[bStart-step:bStart]), opt.BandWidth)
		if float64(dist)/float64(step) > opt.MaxErrorRate {
			break
		}
		aStart -= step
		bStart -= step
	}
	//extend right
	for aEnd < len(abytes) && bEnd < len(bbytes) {
		step := extendBlock
		if len(abytes)-aEnd < step {
			step = len(abytes) - aEnd
		}
		if len(bbytes)-bEnd < step {
			step = len(bbytes) - bEnd
		}
		dist := bandedDistance(abytes[aEnd:aEnd+step], bbytes[bEnd:bEnd+step], opt.BandWidth)
		if float64(dist)/float64(step) > opt.MaxErrorRate {
			break
		}
		aEnd += step
		bEnd += step
	}

	aLen := aEnd - aStart
	bLen := bEnd - bStart
	span := aLen
	if bLen > span {
		span = bLen
	}
	if aLen < opt.MinLength || bLen < opt.MinLength {
		return Overlap{}, false
	}
	dist := bandedDistance(abytes[aStart:aEnd], bbytes[bStart:bEnd], opt.BandWidth)
	identity := 1.0 - float64(dist)/float64(span)
	if identity < opt.MinIdentity {
		return Overlap{}, false
	}

	ov := Overlap{SeqA: c.SeqA, SeqB: c.SeqB, AStart: aStart, AEnd: aEnd, Reverse: c.Reverse, Identity: identity}
	if c.Reverse {
		ov.BStart = len(bbytes) - bEnd
		ov.BEnd = len(bbytes) - bStart
	} else {
		ov.BStart = bStart
		ov.BEnd = bEnd
	}
	return ov, true
}

func reversed(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[len(data)-1-i] = b
	}
	return out
}

var fold [256]byte

func init() {
	for i := range fold {
		fold[i] = byte(i)
	}
	for b := byte('a'); b <= 'z'; b++ {
		fold[b] = b - 32
	}
}

// bandedDistance is the unit-cost edit distance between a and b restricted to
// a diagonal band. The band is widened by the length difference so the
// corner stays reachable. Case-insensitive base comparison.
func bandedDistance(a, b []byte, band int) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	band += diff
	width := 2*band + 1
	const inf = 1 << 30
	prev := make([]int, width)
	cur := make([]int, width)
	//row i holds distances for j in [i-band, i+band]; index offset j-(i-band)
	for w := 0; w < width; w++ {
		j := w - band
		if j < 0 || j > lb {
			prev[w] = inf
		} else {
			prev[w] = j
		}
	}
	for i := 1; i <= la; i++ {
		for w := 0; w < width; w++ {
			j := i - band + w
			if j < 0 || j > lb {
				cur[w] = inf
				continue
			}
			if j == 0 {
				cur[w] = i
				continue
			}
			//diagonal: prev row same w, up: prev row w+1, left: cur w-1
			best := inf
			if d := prev[w]; d < inf {
				if fold[a[i-1]] != fold[b[j-1]] {
					d++
				}
				best = d
			}
			if w+1 < width && prev[w+1] < inf && prev[w+1]+1 < best {
				best = prev[w+1] + 1
			}
			if w > 0 && cur[w-1] < inf && cur[w-1]+1 < best {
				best = cur[w-1] + 1
			}
			cur[w] = best
		}
		prev, cur = cur, prev
	}
	w := lb - la + band
	if w < 0 || w >= width {
		return inf
	}
	return prev[w]
}
