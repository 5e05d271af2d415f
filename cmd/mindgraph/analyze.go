// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mindgraph/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a mind map's structure, consistency and semantics",
	Long: `Analyze builds the concept graph of a mind map and reports centrality,
clusters, a 0-100 consistency score with issues, and semantically related
concept pairs with suggested cross-branch connections.

The mind map comes from a JSON or YAML file (--file, "-" for stdin) or from
the store (--id). --use-ai switches similarity to embeddings when an
embedding API key is configured; failures fall back to text similarity.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	file, _ := cmd.Flags().GetString("file")
	id, _ := cmd.Flags().GetString("id")

	mm, err := loadMindMap(cmd.Context(), cfg, file, id)
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	rep, err := report.Build(cmd.Context(), mm, report.Options{
		UseAI:        cfg.Analysis.UseAI,
		Seed:         cfg.Analysis.Seed,
		Embedder:     embedder,
		EmbedTimeout: cfg.Embedding.Timeout,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("analyzing mind map: %w", err)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(rep)
	}
	rep.WriteText(os.Stdout)
	return nil
}

func init() {
	analyzeCmd.Flags().String("file", "", "mind map file (JSON or YAML, - for stdin)")
	analyzeCmd.Flags().String("id", "", "saved mind map id")
	analyzeCmd.Flags().Bool("use-ai", false, "use embedding similarity when available")
	analyzeCmd.Flags().Uint64("seed", 0, "seed for clustering (0 = random)")
	analyzeCmd.Flags().Bool("json", false, "output the report as JSON")

	_ = viper.BindPFlag("analysis.use_ai", analyzeCmd.Flags().Lookup("use-ai"))
	_ = viper.BindPFlag("analysis.seed", analyzeCmd.Flags().Lookup("seed"))

	rootCmd.AddCommand(analyzeCmd)
}
