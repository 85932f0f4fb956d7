// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/partswap/internal/replace"
	"github.com/pdiddy/partswap/internal/report"
	"github.com/pdiddy/partswap/pkg/types"
)

var findCmd = &cobra.Command{
	Use:   "find <part-number>",
	Short: "Search for replacement candidates for a part",
	Long: `Find looks the part up in the catalog, ranks its parameters by how
critical they are, and searches for parts matching all of them. While no
candidate survives, the least critical parameter is dropped and the search
runs again. Each attempt is printed as a trace line.

With --family-mode exclude_base, candidates sharing the part's numeric base
(for example 4414F-ND for 4414F) are removed; only_base keeps only those.`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().Bool("require-results", true, "keep relaxing until at least one candidate survives")
	findCmd.Flags().String("family-mode", string(types.FamilyNone), "family filter: none, exclude_base, only_base")
	findCmd.Flags().Bool("json", false, "print the result as JSON")
	findCmd.Flags().String("output", "", "also save the result to this file (.json or .yaml)")
	findCmd.Flags().Int("top", 10, "number of products to print (0 for all)")
	findCmd.Flags().Int("workers", 0, "enrichment workers (1-32)")
	viper.BindPFlag("search.enrich.workers", findCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	requireResults, _ := cmd.Flags().GetBool("require-results")
	modeFlag, _ := cmd.Flags().GetString("family-mode")
	asJSON, _ := cmd.Flags().GetBool("json")
	output, _ := cmd.Flags().GetString("output")
	top, _ := cmd.Flags().GetInt("top")

	mode, err := types.ParseFamilyMode(modeFlag)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	res, findErr := a.finder().Find(cmd.Context(), args[0], replace.Options{
		RequireResults: requireResults,
		FamilyMode:     mode,
	})

	if output != "" {
		if err := report.WriteResult(output, res); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved result to %s\n", output)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	} else {
		report.PrintTrace(os.Stdout, res, top)
		fmt.Fprintln(os.Stderr, replace.Summary(res))
	}
	return findErr
}
