package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"wtodash/internal/report"
	"wtodash/internal/utils"
	"wtodash/pkg/dataset"
)

// reportCmd renders the guided walkthrough in the terminal and
// optionally writes CSV/JSON/PDF reports of the filtered table.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the guided import analysis in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner, _ := pterm.DefaultSpinner.Start("Fetching WTO import data...")
		table, err := loadTable(cmd)
		if err != nil {
			spinner.Fail("Fetch failed")
			return err
		}
		spinner.Success(fmt.Sprintf("Loaded %d import records", len(table)))

		filter := productFilter(cmd)
		if err := report.Render(table, filter); err != nil {
			return err
		}

		filtered := dataset.Query(table, filter)
		reportName, _ := cmd.Flags().GetString("report-name")
		reportTypes, _ := cmd.Flags().GetStringSlice("report-type")
		outputDir, _ := cmd.Flags().GetString("dir")

		for _, reportType := range reportTypes {
			var path string
			switch reportType {
			case "csv":
				path, err = report.ExportToCSV(filtered, reportName, outputDir)
			case "json":
				path, err = report.ExportToJSON(filtered, reportName, outputDir)
			case "pdf":
				path, err = report.ExportToPDF(filtered, reportName, outputDir)
			default:
				return fmt.Errorf("unknown report type %q (supported: csv, json, pdf)", reportType)
			}
			if err != nil {
				return err
			}
			utils.Log.Infof("Report saved to %s", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addDataFlags(reportCmd)
	reportCmd.Flags().StringP("report-name", "n", "", "Base name for report files (without extension)")
	reportCmd.Flags().StringSliceP("report-type", "y", nil, "Report types to export: csv, json, pdf")
	reportCmd.Flags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
}
