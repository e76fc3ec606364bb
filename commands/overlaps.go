package commands

import (
	"runtime"
	"sort"

	"github.com/spf13/cobra"

	"panbundle/align"
	"panbundle/chain"
	"panbundle/fingerprint"
	"panbundle/formats"
)

// newOverlapsCommand runs only the index/chain/refine stages and prints the
// overlap records, for inspecting what the graph builder would consume.
func newOverlapsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlaps <sequences.fa[.gz]>",
		Short: "Find pairwise overlaps without building the graph",
		Args:  cobra.ExactArgs(1),
	}
	configFile := addConfigFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, *configFile)
		if err != nil {
			return err
		}
		store, err := loadSequences(args[0])
		if err != nil {
			return err
		}
		workers := cfg.Workers
		if workers < 1 {
			workers = runtime.GOMAXPROCS(0)
		}
		ix, err := fingerprint.Build(cmd.Context(), store, cfg.K, cfg.WindowSize, workers)
		if err != nil {
			return err
		}
		chainOpt := chain.Options{GapTolerance: cfg.GapTolerance, MaxGap: cfg.MaxGap, MinAnchors: cfg.MinAnchors}
		alignOpt := align.Options{BandWidth: cfg.BandWidth, MaxErrorRate: cfg.MaxErrorRate, MinLength: cfg.MinOverlapLength, MinIdentity: cfg.MinIdentity}
		var overlaps []align.Overlap
		ids := store.IDs()
		for i := 0; i < len(ids); i++ {
			lo := i + 1
			if cfg.SelfCompare {
				lo = i
			}
			for j := lo; j < len(ids); j++ {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				a, _ := store.Get(ids[i])
				b, _ := store.Get(ids[j])
				for _, c := range chain.Find(ix, ids[i], ids[j], chainOpt) {
					if ov, ok := align.Refine(a, b, c, cfg.K, alignOpt); ok {
						overlaps = append(overlaps, ov)
					}
				}
			}
		}
		sort.Slice(overlaps, func(x, y int) bool {
			a, b := overlaps[x], overlaps[y]
			if a.SeqA != b.SeqA {
				return a.SeqA < b.SeqA
			}
			if a.AStart != b.AStart {
				return a.AStart < b.AStart
			}
			return a.SeqB < b.SeqB
		})
		return formats.WriteOverlapsTSV(cmd.OutOrStdout(), store, overlaps)
	}
	return cmd
}
