// Package commands is the thin CLI layer over the core packages. It owns
// file ingestion and output formatting; the core only sees a Store going in
// and a Graph coming out.
package commands

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"panbundle/pipeline"
	"panbundle/sequence"
)

func NewRootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "panbundle",
		Short: "Build pangenome graphs from sparse sequence fingerprints",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLevel(log.WarnLevel)
			if verbose {
				log.SetLevel(log.InfoLevel)
			}
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress")
	root.AddCommand(newBuildCommand(), newOverlapsCommand(), newVersionCommand())
	return root
}

// loadConfig merges an optional config file with flag overrides.
func loadConfig(cmd *cobra.Command, configFile string) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = pipeline.LoadConfig(configFile); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("kmer") {
		cfg.K, _ = flags.GetInt("kmer")
	}
	if flags.Changed("window") {
		cfg.WindowSize, _ = flags.GetInt("window")
	}
	if flags.Changed("min-length") {
		cfg.MinOverlapLength, _ = flags.GetInt("min-length")
	}
	if flags.Changed("min-identity") {
		cfg.MinIdentity, _ = flags.GetFloat64("min-identity")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("self") {
		cfg.SelfCompare, _ = flags.GetBool("self")
	}
	return cfg, cfg.Validate()
}

func addConfigFlags(cmd *cobra.Command) *string {
	configFile := cmd.Flags().String("config", "", "YAML config file")
	cmd.Flags().Int("kmer", pipeline.DefaultConfig().K, "fingerprint k-mer length")
	cmd.Flags().Int("window", pipeline.DefaultConfig().WindowSize, "minimizer window size")
	cmd.Flags().Int("min-length", pipeline.DefaultConfig().MinOverlapLength, "minimum overlap length")
	cmd.Flags().Float64("min-identity", pipeline.DefaultConfig().MinIdentity, "minimum overlap identity")
	cmd.Flags().Int("workers", 0, "worker count (0 = all cores)")
	cmd.Flags().Bool("self", false, "also chain sequences against themselves")
	return configFile
}

func loadSequences(filename string) (*sequence.Store, error) {
	store, err := sequence.LoadStore(filename, func(name string, err error) {
		log.WithFields(log.Fields{"sequence": name, "error": err}).Warn("skipping invalid sequence")
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}
