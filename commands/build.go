package commands

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"panbundle/formats"
	"panbundle/pipeline"
)

func newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <sequences.fa[.gz]>",
		Short: "Build the pangenome graph and write it out",
		Args:  cobra.ExactArgs(1),
	}
	configFile := addConfigFlags(cmd)
	graphOut := cmd.Flags().String("out", "-", "graph TSV output file (- for stdout)")
	bedOut := cmd.Flags().String("bed", "", "also write per-path bundle intervals as BED")
	dbOut := cmd.Flags().String("db", "", "also export the graph to a SQLite database")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, *configFile)
		if err != nil {
			return err
		}
		store, err := loadSequences(args[0])
		if err != nil {
			return err
		}
		g, stats, err := pipeline.Run(cmd.Context(), store, cfg)
		if err != nil {
			return err
		}
		out := os.Stdout
		if *graphOut != "-" {
			if out, err = os.Create(*graphOut); err != nil {
				return err
			}
			defer out.Close()
		}
		if err := formats.WriteGraphTSV(out, store, g); err != nil {
			return err
		}
		if *bedOut != "" {
			f, err := os.Create(*bedOut)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := formats.WriteBundleBED(f, store, g); err != nil {
				return err
			}
		}
		if *dbOut != "" {
			runID, err := formats.ExportSQLite(*dbOut, store, g)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{"db": *dbOut, "run": runID}).Info("graph exported")
		}
		fmt.Fprintf(os.Stderr, "%d sequences, %d fingerprints, %d overlaps, %d bundles (%d conflicting spans dropped) in %v\n",
			stats.Sequences, stats.Fingerprints, stats.Overlaps, stats.Bundles, stats.Dropped, stats.Elapsed)
		return nil
	}
	return cmd
}
