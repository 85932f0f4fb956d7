// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/partswap/internal/report"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a parameter list by replacement criticality",
	Long: `Rank orders a list of {id, name, value} parameters from most to least
critical for finding a replacement. The list comes from --params (JSON) or
--from-file (JSON or YAML, either a bare list or {params, mpn, category}).
Without an AI API key the input order is kept.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().String("params", "", "parameter list as JSON")
	rankCmd.Flags().String("from-file", "", "read the parameter list from a JSON or YAML file")
	rankCmd.Flags().String("mpn", "", "manufacturer part number the parameters belong to")
	rankCmd.Flags().String("category", "", "product category of the part")
	rankCmd.Flags().Bool("json", false, "print the ranking as JSON")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	inline, _ := cmd.Flags().GetString("params")
	fromFile, _ := cmd.Flags().GetString("from-file")
	mpn, _ := cmd.Flags().GetString("mpn")
	category, _ := cmd.Flags().GetString("category")
	asJSON, _ := cmd.Flags().GetBool("json")

	var (
		pf  *report.ParamsFile
		err error
	)
	switch {
	case inline != "" && fromFile != "":
		return errors.New("use either --params or --from-file, not both")
	case inline != "":
		pf, err = report.ParseParams([]byte(inline))
	case fromFile != "":
		pf, err = report.ReadParamsFile(fromFile)
	default:
		return errors.New("one of --params or --from-file is required")
	}
	if err != nil {
		return err
	}
	if mpn == "" {
		mpn = pf.MPN
	}
	if category == "" {
		category = pf.Category
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ranked := a.ranker.Rank(cmd.Context(), pf.Params, mpn, category)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"ranked": ranked})
	}
	for _, p := range ranked {
		fmt.Printf("%2d. %s", p.Rank, p.Name)
		if p.Value != "" {
			fmt.Printf(" = %s", p.Value)
		}
		if p.ID != "" {
			fmt.Printf("  [%s]", p.ID)
		}
		fmt.Println()
	}
	return nil
}
