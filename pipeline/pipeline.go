package pipeline

import (
	"context"
	"runtime"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"panbundle/align"
	"panbundle/chain"
	"panbundle/fingerprint"
	"panbundle/graph"
	"panbundle/sequence"
)

// Stats is a snapshot of one run.
type Stats struct {
	Sequences    int
	Bases        int64
	Fingerprints int
	Chains       int
	Overlaps     int
	Bundles      int
	Dropped      int
	Elapsed      time.Duration
}

// Run executes the whole pipeline: fingerprint index, pairwise chaining and
// refinement across a worker pool, then single-threaded graph fusion.
// Chaining runs once per unordered pair; within a pair every surviving chain
// becomes at most one overlap. Cancellation is cooperative, checked between
// pairs. The resulting graph is identical for any worker count.
func Run(ctx context.Context, store *sequence.Store, cfg Config) (*graph.Graph, Stats, error) {
	var stats Stats
	if err := cfg.Validate(); err != nil {
		return nil, stats, err
	}
	start := time.Now()
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	ix, err := fingerprint.Build(ctx, store, cfg.K, cfg.WindowSize, workers)
	if err != nil {
		return nil, stats, err
	}
	log.WithFields(log.Fields{
		"sequences":    store.Len(),
		"bases":        store.Bases(),
		"fingerprints": ix.Size(),
	}).Info("fingerprint index built")

	chainOpt := chain.Options{GapTolerance: cfg.GapTolerance, MaxGap: cfg.MaxGap, MinAnchors: cfg.MinAnchors}
	alignOpt := align.Options{BandWidth: cfg.BandWidth, MaxErrorRate: cfg.MaxErrorRate, MinLength: cfg.MinOverlapLength, MinIdentity: cfg.MinIdentity}

	type pair struct{ a, b int }
	jobs := make(chan pair, workers*2)
	results := make(chan pairResult, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				a, aErr := store.Get(p.a)
				b, bErr := store.Get(p.b)
				if aErr != nil || bErr != nil {
					continue
				}
				var res pairResult
				for _, c := range chain.Find(ix, p.a, p.b, chainOpt) {
					res.chains++
					if ov, ok := align.Refine(a, b, c, cfg.K, alignOpt); ok {
						res.overlaps = append(res.overlaps, ov)
					}
				}
				results <- res
			}
		}()
	}

	go func() {
		defer close(jobs)
		ids := store.IDs()
		for i := 0; i < len(ids); i++ {
			lo := i + 1
			if cfg.SelfCompare {
				lo = i
			}
			for j := lo; j < len(ids); j++ {
				if ctx.Err() != nil {
					return
				}
				jobs <- pair{ids[i], ids[j]}
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var overlaps []align.Overlap
	for res := range results {
		stats.Chains += res.chains
		overlaps = append(overlaps, res.overlaps...)
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	log.WithFields(log.Fields{"chains": stats.Chains, "overlaps": len(overlaps)}).Info("pairwise refinement complete")

	gOpt := graph.DefaultOptions()
	gOpt.MergeFraction = cfg.MergeFraction
	g := graph.Build(store, overlaps, gOpt)

	stats.Sequences = store.Len()
	stats.Bases = store.Bases()
	stats.Fingerprints = ix.Size()
	stats.Overlaps = len(overlaps)
	stats.Bundles = len(g.Nodes())
	stats.Dropped = g.Dropped()
	stats.Elapsed = time.Since(start)
	log.WithFields(log.Fields{
		"bundles": stats.Bundles,
		"dropped": stats.Dropped,
		"elapsed": stats.Elapsed,
	}).Info("pangenome graph built")
	return g, stats, nil
}

type pairResult struct {
	chains   int
	overlaps []align.Overlap
}
