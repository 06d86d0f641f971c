package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wtodash/pkg/dataset"
)

// fetchCmd prints the normalized table, one record per line, for piping.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch import statistics and print them as delimited lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(cmd)
		if err != nil {
			return err
		}
		filtered := dataset.Query(table, productFilter(cmd))

		output, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")
		for _, rec := range filtered {
			line, err := dataset.FormatRecord(rec, output, delimiter)
			if err != nil {
				return err
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addDataFlags(fetchCmd)
	fetchCmd.Flags().StringP("output", "o", "yrpv", "Output flags. Supported: y (year), r (reporter), p (product group), v (value). Can be combined. Example: -o yv")
	fetchCmd.Flags().StringP("delimiter", "d", " ", "Delimiter character to use for line output")
}
