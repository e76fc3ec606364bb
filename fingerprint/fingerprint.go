package fingerprint

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/wyhash"

	"panbundle/sequence"
)

// Strand marks which strand of the source sequence a fingerprint was drawn
// from. A fingerprint's hash is the canonical (smaller) of the forward and
// reverse-complement k-mer hashes, so matches across strands share a hash and
// differ only in strand tags.
type Strand uint8

const (
	Forward Strand = iota
	Reverse
)

func (s Strand) String() string {
	if s == Forward {
		return "+"
	}
	return "-"
}

// Fingerprint is one kept minimizer: a position-tagged hash of the k-mer
// starting at Pos (forward coordinates, regardless of strand).
type Fingerprint struct {
	Hash   uint64
	SeqID  int
	Pos    int
	Strand Strand
}

const hashSeed = 0x9E3779B97F4A7C15

// invalid marks k-mer positions that include an N. They never win a window.
const invalid = math.MaxUint64

func hashKmer(kmer uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], kmer)
	return wyhash.Hash(buf[:], hashSeed)
}

// Extract computes the sparse fingerprint set of one sequence: hash every
// k-mer on both strands, take the canonical hash per position, then keep the
// window minimum (leftmost on ties) over every w consecutive positions.
// Deterministic for a given sequence and configuration. Sequences shorter
// than k yield nothing.
func Extract(seq *sequence.Sequence, k, w int) []Fingerprint {
	n := seq.Len() - k + 1
	if n <= 0 {
		return nil
	}
	hashes := make([]uint64, n)
	strands := make([]Strand, n)
	var fwd, rev uint64
	mask := (uint64(1) << (2 * uint(k))) - 1
	rcShift := 2 * uint(k-1)
	run := 0 //bases since last N
	for i := 0; i < seq.Len(); i++ {
		code := seq.Code(i)
		if code == sequence.CodeN {
			run = 0
			fwd = 0
			rev = 0
		} else {
			fwd = ((fwd << 2) | uint64(code)) & mask
			rev = (rev >> 2) | (uint64(3^code) << rcShift)
			run++
		}
		pos := i - k + 1
		if pos < 0 {
			continue
		}
		if run < k {
			hashes[pos] = invalid
			continue
		}
		hf := hashKmer(fwd)
		hr := hashKmer(rev)
		if hf <= hr {
			hashes[pos] = hf
			strands[pos] = Forward
		} else {
			hashes[pos] = hr
			strands[pos] = Reverse
		}
	}
	return selectMinimizers(hashes, strands, seq.ID(), w)
}

// selectMinimizers runs a monotonic-queue sweep over the per-position hashes,
// emitting the minimum of each w-wide window once. Ties keep the leftmost
// position: equal hashes are not evicted from the queue, so the earliest
// remains at the front.
func selectMinimizers(hashes []uint64, strands []Strand, seqID, w int) []Fingerprint {
	kept := make([]Fingerprint, 0, len(hashes)/w+1)
	queue := make([]int, 0, w+1) //indices, hashes ascending
	lastKept := -1
	for i := range hashes {
		if hashes[i] != invalid {
			for len(queue) > 0 && hashes[queue[len(queue)-1]] > hashes[i] {
				queue = queue[:len(queue)-1]
			}
			queue = append(queue, i)
		}
		for len(queue) > 0 && queue[0] <= i-w {
			queue = queue[1:]
		}
		if i < w-1 || len(queue) == 0 {
			continue
		}
		min := queue[0]
		if min != lastKept {
			kept = append(kept, Fingerprint{Hash: hashes[min], SeqID: seqID, Pos: min, Strand: strands[min]})
			lastKept = min
		}
	}
	return kept
}
