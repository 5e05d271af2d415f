// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mindgraph/internal/store"
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "Manage saved mind maps (list, get, save, update, delete, import, export)",
	Long: `Maps manages the local SQLite database of saved mind maps. The database
lives in <data-dir>/mindgraph.db.`,
}

var mapsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved mind maps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(loadConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.All(cmd.Context())
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return printJSON(records)
		}
		if len(records) == 0 {
			fmt.Println("No saved mind maps.")
			return nil
		}

		fmt.Printf("%-36s  %-30s  %-8s  %s\n", "ID", "Central idea", "Concepts", "Updated")
		fmt.Println(strings.Repeat("-", 100))
		for _, r := range records {
			idea := truncate(r.MindMap.CentralIdea, 30)
			fmt.Printf("%-36s  %-30s  %-8d  %s\n", r.ID, idea, r.MindMap.ConceptCount(), r.UpdatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Printf("\n%d mind maps\n", len(records))
		return nil
	},
}

var mapsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a saved mind map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(loadConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return printJSON(rec)
		}
		printTree(os.Stdout, rec.MindMap)
		return nil
	},
}

var mapsSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Save a mind map from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mm, err := readMindMap(args[0])
		if err != nil {
			return err
		}
		st, err := openStore(loadConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		input, _ := cmd.Flags().GetString("input")
		rec, err := st.Save(cmd.Context(), mm, input)
		if err != nil {
			return err
		}
		fmt.Println(rec.ID)
		return nil
	},
}

var mapsUpdateCmd = &cobra.Command{
	Use:   "update <id> <file>",
	Short: "Replace a saved mind map with the contents of a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mm, err := readMindMap(args[1])
		if err != nil {
			return err
		}
		st, err := openStore(loadConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.Update(cmd.Context(), args[0], mm)
		if err != nil {
			return err
		}
		fmt.Printf("updated %s at %s\n", rec.ID, rec.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var mapsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved mind map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(loadConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

var mapsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import mind maps from a JSON export (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		st, err := openStore(loadConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Import(cmd.Context(), r)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d mind maps\n", n)
		return nil
	},
}

var mapsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all mind maps as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		st, err := openStore(loadConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		var w io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if err := st.Export(cmd.Context(), w, format); err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
		}
		return nil
	},
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	mapsListCmd.Flags().Bool("json", false, "output records as JSON")
	mapsGetCmd.Flags().Bool("json", false, "output the record as JSON")
	mapsSaveCmd.Flags().String("input", "", "topic text to store with the mind map")
	mapsExportCmd.Flags().String("format", store.FormatJSON, "export format: json or yaml")
	mapsExportCmd.Flags().String("output", "", "write to a file instead of stdout")

	mapsCmd.AddCommand(mapsListCmd)
	mapsCmd.AddCommand(mapsGetCmd)
	mapsCmd.AddCommand(mapsSaveCmd)
	mapsCmd.AddCommand(mapsUpdateCmd)
	mapsCmd.AddCommand(mapsDeleteCmd)
	mapsCmd.AddCommand(mapsImportCmd)
	mapsCmd.AddCommand(mapsExportCmd)

	rootCmd.AddCommand(mapsCmd)
}
