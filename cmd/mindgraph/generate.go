// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/mindgraph/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic...]",
	Short: "Generate a mind map for a topic",
	Long: `Generate sends the topic to the configured AI model and prints the
resulting mind map: a central idea with branches and sub-branches.
Use --save to store it in the local database.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	topic := strings.Join(args, " ")

	logger.Info("generating mind map", zap.String("topic", topic), zap.String("model", cfg.Generation.Model))
	mm, err := newGenerator(cfg).Generate(cmd.Context(), topic)
	if err != nil {
		return fmt.Errorf("generating mind map: %w", err)
	}

	save, _ := cmd.Flags().GetBool("save")
	if save {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		rec, err := st.Save(cmd.Context(), mm, topic)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved as %s\n", rec.ID)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(mm)
	}
	printTree(os.Stdout, mm)
	return nil
}

// printTree renders mm as an indented outline.
func printTree(w io.Writer, mm types.MindMap) {
	fmt.Fprintln(w, mm.CentralIdea)
	for i, b := range mm.Branches {
		last := i == len(mm.Branches)-1
		branchPrefix, childPrefix := "├── ", "│   "
		if last {
			branchPrefix, childPrefix = "└── ", "    "
		}
		fmt.Fprintln(w, branchPrefix+b.Title)
		for j, sub := range b.SubBranches {
			subPrefix := "├── "
			if j == len(b.SubBranches)-1 {
				subPrefix = "└── "
			}
			fmt.Fprintln(w, childPrefix+subPrefix+sub)
		}
	}
}

func init() {
	generateCmd.Flags().String("model", "", "AI model identifier for generation")
	generateCmd.Flags().Int("max-branches", 0, "number of branches to request (default 6)")
	generateCmd.Flags().Bool("save", false, "save the generated mind map")
	generateCmd.Flags().Bool("json", false, "output the mind map as JSON")

	_ = viper.BindPFlag("generation.model", generateCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("generation.max_branches", generateCmd.Flags().Lookup("max-branches"))

	rootCmd.AddCommand(generateCmd)
}
