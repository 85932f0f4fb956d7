// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/partswap/internal/compare"
)

var compareCmd = &cobra.Command{
	Use:   "compare <part-a> <part-b>",
	Short: "Compare the attributes of two parts side by side",
	Long: `Compare fetches both parts from the catalog and prints one row per
attribute, using canonical column names so that near-identical labels line
up. The last column marks rows whose values match.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().Bool("json", false, "print the comparison as JSON")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	cmp, err := compare.Compare(cmd.Context(), a.catalog, args[0], args[1])
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cmp)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Parameter\t%s\t%s\tMatch\n", cmp.PartA, cmp.PartB)
	for _, r := range cmp.Rows {
		mark := ""
		if r.Match {
			mark = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Param, r.A, r.B, mark)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d of %d parameters match\n", cmp.Matches(), len(cmp.Rows))
	return nil
}
