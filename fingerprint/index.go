package fingerprint

import (
	"context"
	"runtime"
	"sync"

	"panbundle/sequence"
)

const numShards = 64

// Index is the reverse mapping from fingerprint hash to all its occurrences
// across a Store snapshot. It is built once and read-only afterwards; if the
// store gains sequences a new Index must be built. Buckets are sharded by
// hash so construction can insert in parallel without a global lock.
type Index struct {
	store  *sequence.Store
	k      int
	window int
	shards [numShards]map[uint64][]Fingerprint
	bySeq  [][]Fingerprint //per-sequence fingerprints in position order
	total  int
}

// Build fingerprints every sequence in the store in parallel and assembles
// the sharded reverse index. Extraction is parallel per sequence; inserts are
// parallel per shard, each shard owned by exactly one goroutine. Bucket
// contents end up in (sequence id, position) order independent of worker
// count, keeping downstream results deterministic.
func Build(ctx context.Context, store *sequence.Store, k, window, workers int) (*Index, error) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	ix := &Index{store: store, k: k, window: window, bySeq: make([][]Fingerprint, store.Len())}

	//phase one: extract per sequence
	ids := make(chan int, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				seq, err := store.Get(id)
				if err != nil {
					continue //ids come from the store itself
				}
				ix.bySeq[id] = Extract(seq, k, window)
			}
		}()
	}
	var cancelled bool
	for _, id := range store.IDs() {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		ids <- id
	}
	close(ids)
	wg.Wait()
	if cancelled {
		return nil, ctx.Err()
	}

	//phase two: shard-parallel bucket inserts, sequences in id order
	for s := range ix.shards {
		ix.shards[s] = make(map[uint64][]Fingerprint)
	}
	var sg sync.WaitGroup
	for s := 0; s < numShards; s++ {
		sg.Add(1)
		go func(shard uint64) {
			defer sg.Done()
			buckets := ix.shards[shard]
			for _, fps := range ix.bySeq {
				for _, fp := range fps {
					if fp.Hash%numShards == shard {
						buckets[fp.Hash] = append(buckets[fp.Hash], fp)
					}
				}
			}
		}(uint64(s))
	}
	sg.Wait()
	for _, fps := range ix.bySeq {
		ix.total += len(fps)
	}
	return ix, nil
}

// Query returns every occurrence of hash, or nil if the hash is absent.
// An unknown hash is an empty result, never an error.
func (ix *Index) Query(hash uint64) []Fingerprint {
	return ix.shards[hash%numShards][hash]
}

// Sequence returns the kept fingerprints of one sequence in position order.
func (ix *Index) Sequence(id int) []Fingerprint {
	if id < 0 || id >= len(ix.bySeq) {
		return nil
	}
	return ix.bySeq[id]
}

func (ix *Index) Store() *sequence.Store {
	return ix.store
}

func (ix *Index) K() int {
	return ix.k
}

func (ix *Index) Window() int {
	return ix.window
}

// Size is the total number of fingerprints across all sequences.
func (ix *Index) Size() int {
	return ix.total
}
